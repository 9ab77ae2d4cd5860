package graph

import (
	"sort"

	"cotdex/domain/network"
)

// CodeSet is a set of disease codes.
type CodeSet map[network.DiseaseCode]struct{}

// NewCodeSet returns a set holding codes.
func NewCodeSet(codes ...network.DiseaseCode) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s CodeSet) Add(code network.DiseaseCode) { s[code] = struct{}{} }

func (s CodeSet) Has(code network.DiseaseCode) bool {
	_, ok := s[code]
	return ok
}

// Intersect keeps only codes also present in other.
func (s CodeSet) Intersect(other CodeSet) {
	for c := range s {
		if !other.Has(c) {
			delete(s, c)
		}
	}
}

// Sorted returns the members in lexical order.
func (s CodeSet) Sorted() []network.DiseaseCode {
	out := make([]network.DiseaseCode, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
