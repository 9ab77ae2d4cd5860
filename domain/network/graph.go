package network

// The types below are bound by name by the force-directed layout component;
// their JSON field names must not change.

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type NodeData struct {
	ID     DiseaseCode `json:"id"`
	Label  string      `json:"label"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
}

type NodeStyle struct {
	BackgroundColor string `json:"background-color"`
}

// Node is a disease in a rendered view. Position and Locked are only set on
// pinned seeds.
type Node struct {
	Data     NodeData  `json:"data"`
	Style    NodeStyle `json:"style"`
	Position *Position `json:"position,omitempty"`
	Locked   bool      `json:"locked,omitempty"`
}

type EdgeData struct {
	Source DiseaseCode `json:"source"`
	Target DiseaseCode `json:"target"`
	Weight float64     `json:"weight"`
}

type Edge struct {
	Data EdgeData `json:"data"`
}

// Graph is the payload of every network view.
type Graph struct {
	Nodes     []Node   `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	NodeNames []string `json:"node_names"`
}

// Pin anchors two seeds on opposite sides of a sub-network view.
type Pin struct {
	First DiseaseCode
	Last  DiseaseCode
}
