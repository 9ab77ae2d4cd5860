package graph

import (
	"fmt"
	"math"

	"cotdex/domain/network"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	MinWeight = 1.0
	MaxWeight = 10.0
)

// Weight maps a relative risk to an edge width in [MinWeight, MaxWeight],
// rounded half-to-even to two decimals. NaN maps to MinWeight.
func Weight(rr float64) float64 {
	if math.IsNaN(rr) {
		return MinWeight
	}
	w := scalar.RoundEven(rr, 2)
	return math.Max(MinWeight, math.Min(MaxWeight, w))
}

// Projector turns association records into the renderer schema.
type Projector struct {
	style *network.Style
}

// NewProjector creates a projector using style, or the default style if nil.
func NewProjector(style *network.Style) *Projector {
	if style == nil {
		style = network.DefaultStyle()
	}
	return &Projector{style: style}
}

// Project emits one node per distinct code in first-seen order (cause before
// outcome) and one edge per record. Codes without metadata still produce a
// node using the fallback label, size and colour. When pin is set, its First
// and Last codes are locked at the style's anchor positions.
func (p *Projector) Project(records []network.AssociationRecord, meta network.MetadataIndex, pin *network.Pin) *network.Graph {
	g := &network.Graph{
		Nodes:     []network.Node{},
		Edges:     make([]network.Edge, 0, len(records)),
		NodeNames: []string{},
	}
	seen := make(CodeSet)

	for _, r := range records {
		for _, code := range [2]network.DiseaseCode{r.Cause, r.Outcome} {
			if seen.Has(code) {
				continue
			}
			seen.Add(code)
			node := p.node(code, meta)
			p.applyPin(&node, pin)
			g.Nodes = append(g.Nodes, node)
			g.NodeNames = append(g.NodeNames, fmt.Sprintf("%s (%s)", code, node.Data.Label))
		}
		g.Edges = append(g.Edges, network.Edge{Data: network.EdgeData{
			Source: r.Cause,
			Target: r.Outcome,
			Weight: Weight(r.RelativeRisk),
		}})
	}
	return g
}

func (p *Projector) node(code network.DiseaseCode, meta network.MetadataIndex) network.Node {
	label := string(code)
	var width, height *float64
	if m, ok := meta[code]; ok {
		if m.DisplayName != "" {
			label = m.DisplayName
		}
		width, height = m.Width, m.Height
	}
	return network.Node{
		Data: network.NodeData{
			ID:     code,
			Label:  label,
			Width:  p.style.Size(width),
			Height: p.style.Size(height),
		},
		Style: network.NodeStyle{BackgroundColor: p.style.Color(code)},
	}
}

func (p *Projector) applyPin(node *network.Node, pin *network.Pin) {
	if pin == nil {
		return
	}
	left, right := p.style.PinPositions()
	switch node.Data.ID {
	case pin.First:
		node.Position = &network.Position{X: left.X, Y: left.Y}
		node.Locked = true
	case pin.Last:
		node.Position = &network.Position{X: right.X, Y: right.Y}
		node.Locked = true
	}
}
