package graph

import (
	"math"
	"sort"

	"cotdex/domain/network"

	"github.com/montanaflynn/stats"
)

// Distribution summarises a sample.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Hub is a disease with its undirected degree.
type Hub struct {
	Code   network.DiseaseCode `json:"code"`
	Degree int                 `json:"degree"`
}

// Summary describes a filtered view.
type Summary struct {
	Nodes        int           `json:"nodes"`
	Edges        int           `json:"edges"`
	RelativeRisk *Distribution `json:"relative_risk,omitempty"`
	Degree       *Distribution `json:"degree,omitempty"`
	Hubs         []Hub         `json:"hubs"`
}

// Summarize computes counts, the relative-risk and degree distributions and
// the topN best-connected diseases (ties broken by code).
func Summarize(records []network.AssociationRecord, topN int) Summary {
	adj := Undirected(records)
	s := Summary{
		Nodes: len(adj),
		Edges: len(records),
		Hubs:  []Hub{},
	}
	if len(records) == 0 {
		return s
	}

	rr := make([]float64, len(records))
	for i, r := range records {
		rr[i] = r.RelativeRisk
	}
	s.RelativeRisk = describe(rr)

	hubs := make([]Hub, 0, len(adj))
	degrees := make([]float64, 0, len(adj))
	for code, nbrs := range adj {
		hubs = append(hubs, Hub{Code: code, Degree: len(nbrs)})
		degrees = append(degrees, float64(len(nbrs)))
	}
	s.Degree = describe(degrees)

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Code < hubs[j].Code
	})
	if topN >= 0 && len(hubs) > topN {
		hubs = hubs[:topN]
	}
	s.Hubs = hubs
	return s
}

// describe returns nil for an empty sample. Quartiles montanaflynn cannot
// interpolate on very small samples fall back to the minimum and maximum.
func describe(data []float64) *Distribution {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil
	}
	min, err := stats.Min(data)
	if err != nil {
		return nil
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil || math.IsNaN(q25) {
		q25 = min
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil || math.IsNaN(q75) {
		q75 = max
	}

	return &Distribution{
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
	}
}
