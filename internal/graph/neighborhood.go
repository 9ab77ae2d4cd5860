package graph

import (
	"cotdex/domain/network"
	"cotdex/internal/errors"
)

// directNeighbors collects outcomes of records caused by seed and causes of
// records resulting in seed. The seed itself is never included.
func directNeighbors(records []network.AssociationRecord, seed network.DiseaseCode) CodeSet {
	out := make(CodeSet)
	for _, r := range records {
		switch {
		case r.Cause == seed:
			out.Add(r.Outcome)
		case r.Outcome == seed:
			out.Add(r.Cause)
		}
	}
	delete(out, seed)
	return out
}

// Neighbors returns the codes directly connected to seed, plus seed.
func Neighbors(records []network.AssociationRecord, seed network.DiseaseCode) CodeSet {
	out := directNeighbors(records, seed)
	out.Add(seed)
	return out
}

// CommonNeighbors returns the codes connected to every seed, plus all seeds.
// A single seed degenerates to Neighbors.
func CommonNeighbors(records []network.AssociationRecord, seeds []network.DiseaseCode) (CodeSet, error) {
	if len(seeds) == 0 {
		return nil, errors.InvalidParameter("at least one seed is required")
	}
	if len(seeds) == 1 {
		return Neighbors(records, seeds[0]), nil
	}

	common := directNeighbors(records, seeds[0])
	for _, seed := range seeds[1:] {
		if len(common) == 0 {
			break
		}
		common.Intersect(directNeighbors(records, seed))
	}
	for _, seed := range seeds {
		common.Add(seed)
	}
	return common, nil
}

// Restrict keeps the records whose cause and outcome are both in target,
// preserving order.
func Restrict(records []network.AssociationRecord, target CodeSet) []network.AssociationRecord {
	out := make([]network.AssociationRecord, 0, len(records))
	for _, r := range records {
		if target.Has(r.Cause) && target.Has(r.Outcome) {
			out = append(out, r)
		}
	}
	return out
}
