package graph

import (
	"cotdex/domain/network"
)

// Adjacency is an undirected graph as code → neighbour set.
type Adjacency map[network.DiseaseCode]CodeSet

// Undirected builds an adjacency ignoring edge direction.
func Undirected(records []network.AssociationRecord) Adjacency {
	adj := make(Adjacency)
	link := func(a, b network.DiseaseCode) {
		set, ok := adj[a]
		if !ok {
			set = make(CodeSet)
			adj[a] = set
		}
		set.Add(b)
	}
	for _, r := range records {
		link(r.Cause, r.Outcome)
		link(r.Outcome, r.Cause)
	}
	return adj
}

// Degree is the number of distinct neighbours of code.
func (a Adjacency) Degree(code network.DiseaseCode) int {
	return len(a[code])
}

// Reachable returns every code reachable from start, start included.
func (a Adjacency) Reachable(start network.DiseaseCode) CodeSet {
	seen := NewCodeSet(start)
	queue := []network.DiseaseCode{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range a[cur] {
			if seen.Has(next) {
				continue
			}
			seen.Add(next)
			queue = append(queue, next)
		}
	}
	return seen
}

// AllConnected reports whether every pair of distinct seeds is joined by a
// path in the undirected graph of records. Fewer than two distinct seeds is
// trivially connected.
func AllConnected(records []network.AssociationRecord, seeds []network.DiseaseCode) bool {
	distinct := make([]network.DiseaseCode, 0, len(seeds))
	seen := make(CodeSet, len(seeds))
	for _, s := range seeds {
		if !seen.Has(s) {
			seen.Add(s)
			distinct = append(distinct, s)
		}
	}
	if len(distinct) < 2 {
		return true
	}

	// Reachability is an equivalence relation on an undirected graph, so one
	// search from the first seed settles every pair.
	component := Undirected(records).Reachable(distinct[0])
	for _, s := range distinct[1:] {
		if !component.Has(s) {
			return false
		}
	}
	return true
}
