package graph

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"cotdex/domain/network"
	"cotdex/internal"
	"cotdex/internal/errors"
	"cotdex/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(cause, outcome string, rr float64) network.AssociationRecord {
	return testkit.Record(cause, outcome, 1, rr)
}

func codes(s CodeSet) []network.DiseaseCode { return s.Sorted() }

func TestWeight(t *testing.T) {
	tests := []struct {
		rr   float64
		want float64
	}{
		{0.5, 1},
		{1, 1},
		{1.234, 1.23},
		{1.125, 1.12},
		{2.675, 2.68}, // decimal half, rounded on the scaled value
		{2.5, 2.5},
		{10, 10},
		{27.3, 10},
		{math.Inf(1), 10},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Weight(tt.rr), "rr=%v", tt.rr)
	}
}

func TestProject_FirstSeenOrderAndFallbacks(t *testing.T) {
	w := 1.5
	meta := network.IndexMetadata([]network.DiseaseMetadata{
		{Code: "B20", DisplayName: "HIV", Width: &w, Height: &w},
		{Code: "c10", DisplayName: ""},
	})
	records := []network.AssociationRecord{
		rec("B20", "c10", 1.2),
		rec("c10", "Q99", 0.7),
		rec("B20", "c10", 11), // parallel edge
	}

	g := NewProjector(nil).Project(records, meta, nil)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, network.DiseaseCode("B20"), g.Nodes[0].Data.ID)
	assert.Equal(t, network.DiseaseCode("c10"), g.Nodes[1].Data.ID)
	assert.Equal(t, network.DiseaseCode("Q99"), g.Nodes[2].Data.ID)

	assert.Equal(t, "HIV", g.Nodes[0].Data.Label)
	assert.Equal(t, 120.0, g.Nodes[0].Data.Width)
	assert.Equal(t, "c10", g.Nodes[1].Data.Label, "empty display name falls back to code")
	assert.Equal(t, "#FFFFBA", g.Nodes[1].Style.BackgroundColor)
	assert.Equal(t, 30.0, g.Nodes[2].Data.Height, "unknown code gets the default size")

	require.Len(t, g.Edges, 3, "parallel edges are kept")
	assert.Equal(t, 1.2, g.Edges[0].Data.Weight)
	assert.Equal(t, 1.0, g.Edges[1].Data.Weight)
	assert.Equal(t, 10.0, g.Edges[2].Data.Weight)

	assert.Equal(t, []string{"B20 (HIV)", "c10 (c10)", "Q99 (Q99)"}, g.NodeNames)
}

func TestProject_EmptyIsNotNull(t *testing.T) {
	g := NewProjector(nil).Project(nil, nil, nil)
	body, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[],"node_names":[]}`, string(body))
}

func TestProject_Pins(t *testing.T) {
	records := []network.AssociationRecord{rec("A", "X", 1.2), rec("B", "X", 1.2)}
	g := NewProjector(nil).Project(records, nil, &network.Pin{First: "A", Last: "B"})

	body, err := json.Marshal(g.Nodes)
	require.NoError(t, err)
	var nodes []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &nodes))

	assert.Equal(t, map[string]interface{}{"x": 100.0, "y": 300.0}, nodes[0]["position"])
	assert.Equal(t, true, nodes[0]["locked"])
	assert.NotContains(t, nodes[1], "position")
	assert.NotContains(t, nodes[1], "locked")
	assert.Equal(t, map[string]interface{}{"x": 1000.0, "y": 300.0}, nodes[2]["position"])
}

func TestNeighbors(t *testing.T) {
	records := []network.AssociationRecord{
		rec("A", "B", 1.2), rec("C", "A", 1.2), rec("B", "D", 1.2), rec("A", "A", 1.2),
	}
	assert.Equal(t, []network.DiseaseCode{"A", "B", "C"}, codes(Neighbors(records, "A")))
	assert.Equal(t, []network.DiseaseCode{"Z"}, codes(Neighbors(records, "Z")), "isolated seed is its own neighbourhood")
}

func TestCommonNeighbors(t *testing.T) {
	records := []network.AssociationRecord{
		rec("A", "X", 1.2), rec("Y", "A", 1.2), rec("B", "X", 1.2), rec("B", "Z", 1.2), rec("A", "B", 1.2),
	}

	set, err := CommonNeighbors(records, []network.DiseaseCode{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []network.DiseaseCode{"A", "B", "X"}, codes(set))

	set, err = CommonNeighbors(records, []network.DiseaseCode{"A"})
	require.NoError(t, err)
	assert.Equal(t, codes(Neighbors(records, "A")), codes(set))

	set, err = CommonNeighbors(records, []network.DiseaseCode{"A", "B", "Q"})
	require.NoError(t, err)
	assert.Equal(t, []network.DiseaseCode{"A", "B", "Q"}, codes(set), "no common neighbour leaves only the seeds")

	_, err = CommonNeighbors(records, nil)
	assert.True(t, errors.Is(err, errors.CodeInvalidParameter))
}

func TestRestrict(t *testing.T) {
	records := []network.AssociationRecord{
		rec("A", "B", 1.1), rec("B", "C", 1.2), rec("C", "A", 1.3), rec("A", "B", 1.4),
	}
	out := Restrict(records, NewCodeSet("A", "B"))
	require.Len(t, out, 2)
	assert.Equal(t, 1.1, out[0].RelativeRisk)
	assert.Equal(t, 1.4, out[1].RelativeRisk)

	assert.Empty(t, Restrict(records, NewCodeSet()))
}

func TestAllConnected(t *testing.T) {
	records := []network.AssociationRecord{
		rec("A", "B", 1.2), rec("C", "B", 1.2), rec("D", "C", 1.2), rec("X", "Y", 1.2),
	}

	assert.True(t, AllConnected(records, []network.DiseaseCode{"A", "D"}), "direction is ignored")
	assert.True(t, AllConnected(records, []network.DiseaseCode{"D", "B", "A"}))
	assert.False(t, AllConnected(records, []network.DiseaseCode{"A", "X"}))
	assert.False(t, AllConnected(records, []network.DiseaseCode{"A", "Q"}), "unknown seed is unreachable")
	assert.True(t, AllConnected(records, []network.DiseaseCode{"A"}))
	assert.True(t, AllConnected(records, []network.DiseaseCode{"Q", "Q"}), "one distinct seed")
	assert.True(t, AllConnected(nil, nil))
}

func TestAllConnected_MatchesPairwise(t *testing.T) {
	gen := testkit.NewGenerator(testkit.GeneratorConfig{Diseases: 30, FollowUps: 1, Density: 0.02, Seed: 7})
	all := gen.Codes()
	store := gen.Store()
	records, err := store.QueryAssociations(context.Background(), network.AssociationQuery{
		FollowUp: 1, RRMin: 0, RRMax: 100, RRScale: network.RRScaleRaw, ChisqMax: 1, FisherMax: 1,
	})
	require.NoError(t, err)

	adj := Undirected(records)
	for i := 0; i+2 < len(all); i += 3 {
		seeds := all[i : i+3]
		pairwise := true
		for a := range seeds {
			for b := a + 1; b < len(seeds); b++ {
				if !adj.Reachable(seeds[a]).Has(seeds[b]) {
					pairwise = false
				}
			}
		}
		assert.Equal(t, pairwise, AllConnected(records, seeds), "seeds %v", seeds)
	}
}

func TestSummarize(t *testing.T) {
	records := []network.AssociationRecord{
		rec("A", "B", 1.0), rec("A", "C", 2.0), rec("A", "D", 3.0), rec("B", "C", 4.0),
	}
	s := Summarize(records, 2)

	assert.Equal(t, 4, s.Nodes)
	assert.Equal(t, 4, s.Edges)
	require.NotNil(t, s.RelativeRisk)
	assert.Equal(t, 2.5, s.RelativeRisk.Mean)
	assert.Equal(t, 1.0, s.RelativeRisk.Min)
	assert.Equal(t, 4.0, s.RelativeRisk.Max)
	require.Len(t, s.Hubs, 2)
	assert.Equal(t, Hub{Code: "A", Degree: 3}, s.Hubs[0])
	assert.Equal(t, Hub{Code: "B", Degree: 2}, s.Hubs[1], "ties break by code")

	empty := Summarize(nil, 5)
	assert.Zero(t, empty.Nodes)
	assert.Nil(t, empty.RelativeRisk)
	assert.NotNil(t, empty.Hubs)
}

func TestSummarize_SmallSampleEncodes(t *testing.T) {
	s := Summarize([]network.AssociationRecord{rec("A", "B", 1.2), rec("B", "C", 1.3)}, 5)

	require.NotNil(t, s.RelativeRisk)
	assert.False(t, math.IsNaN(s.RelativeRisk.Q25))
	assert.False(t, math.IsNaN(s.RelativeRisk.Q75))
	assert.GreaterOrEqual(t, s.RelativeRisk.Q25, s.RelativeRisk.Min)
	assert.LessOrEqual(t, s.RelativeRisk.Q75, s.RelativeRisk.Max)
	require.NotNil(t, s.Degree)
	assert.False(t, math.IsNaN(s.Degree.Q25))

	body, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"relative_risk"`)

	one := Summarize([]network.AssociationRecord{rec("A", "B", 1.2)}, 5)
	_, err = json.Marshal(one)
	require.NoError(t, err)
	assert.Equal(t, 1.2, one.RelativeRisk.Q25)
}

func TestBreakdown_JSONShape(t *testing.T) {
	s := func(v string) *string { return &v }
	b := BuildBreakdown(network.AttributeKindEdge, []network.AttributeRow{
		{Attribute1: "sex", Value1: s("2"), Count: 7},
		{Attribute1: "sex", Value1: s("1"), Attribute2: s("ctrb"), Value2: s("5"), Count: 2},
	})

	body, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "edge",
		"data": {
			"sex": {"2": 7}, "age": {}, "ctrb": {}, "sido": {},
			"sex_age": {}, "sex_ctrb": {"1": {"5": 2}}, "sex_sido": {}
		}
	}`, string(body))
}

func TestBuildBreakdown(t *testing.T) {
	s := func(v string) *string { return &v }
	rows := []network.AttributeRow{
		{Attribute1: "sex", Value1: s("1.0"), Count: 10},
		{Attribute1: "sex", Value1: s("2"), Attribute2: s(" "), Count: 12},
		{Attribute1: "age", Value1: nil, Count: 99},
		{Attribute1: "income", Value1: s("3"), Count: 5},
		{Attribute1: "sex", Value1: s("1"), Attribute2: s("age"), Value2: s("4.0"), Count: 3},
		{Attribute1: "sex", Value1: s("1"), Attribute2: s("age"), Value2: nil, Count: 8},
		{Attribute1: "sido", Value1: s("Seoul"), Count: 2},
	}
	b := BuildBreakdown(network.AttributeKindNode, rows)

	assert.Equal(t, network.AttributeKindNode, b.Kind)
	assert.Equal(t, map[string]int64{"1": 10, "2": 12}, b.Marginal["sex"])
	assert.Empty(t, b.Marginal["age"])
	assert.NotContains(t, b.Marginal, "income")
	assert.Equal(t, map[string]int64{"Seoul": 2}, b.Marginal["sido"])
	assert.Equal(t, map[string]map[string]int64{"1": {"4": 3}}, b.Joint["sex_age"])
	assert.Contains(t, b.Joint, "sex_sido")
}

type failingReader struct{}

func (failingReader) QueryAssociations(context.Context, network.AssociationQuery) ([]network.AssociationRecord, error) {
	return nil, assert.AnError
}

func TestEdgeFilter(t *testing.T) {
	quiet := internal.NewLogger(internal.LogLevelError)
	f := NewEdgeFilter(testkit.ChainFixture(), quiet)
	ctx := context.Background()

	records, err := f.Filter(ctx, network.SingleDiseaseProfile.Defaults, "C")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, network.DiseaseCode("B"), records[0].Cause)

	records, err = f.Filter(ctx, network.SingleDiseaseProfile.Defaults)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	bad := network.SingleDiseaseProfile.Defaults
	bad.RRMax = math.NaN()
	_, err = f.Filter(ctx, bad)
	assert.True(t, errors.Is(err, errors.CodeInvalidParameter))

	_, err = NewEdgeFilter(failingReader{}, quiet).Filter(ctx, network.SingleDiseaseProfile.Defaults)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeDataSource))
	assert.ErrorIs(t, err, assert.AnError)
}
