package graph

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"cotdex/domain/network"
)

var (
	marginalAttributes = []string{"sex", "age", "ctrb", "sido"}
	jointAttributes    = []string{"sex_age", "sex_ctrb", "sex_sido"}
)

// Breakdown is the demographic distribution behind a node or an edge.
// Marginal tables map value → count; joint tables map value1 → value2 → count
// and are keyed "attr1_attr2".
type Breakdown struct {
	Kind     network.AttributeKind
	Marginal map[string]map[string]int64
	Joint    map[string]map[string]map[string]int64
}

// MarshalJSON emits {"type": ..., "data": {...}} with marginal and joint
// tables side by side under data, the shape the detail panel reads.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, len(b.Marginal)+len(b.Joint))
	for k, v := range b.Marginal {
		data[k] = v
	}
	for k, v := range b.Joint {
		data[k] = v
	}
	return json.Marshal(struct {
		Kind network.AttributeKind  `json:"type"`
		Data map[string]interface{} `json:"data"`
	}{b.Kind, data})
}

// BuildBreakdown folds attribute rows into marginal and joint tables. Rows
// without a first value are skipped, as are joint rows without a second value.
// Marginal rows for unknown attributes are ignored.
func BuildBreakdown(kind network.AttributeKind, rows []network.AttributeRow) Breakdown {
	b := Breakdown{
		Kind:     kind,
		Marginal: make(map[string]map[string]int64, len(marginalAttributes)),
		Joint:    make(map[string]map[string]map[string]int64, len(jointAttributes)),
	}
	for _, a := range marginalAttributes {
		b.Marginal[a] = map[string]int64{}
	}
	for _, a := range jointAttributes {
		b.Joint[a] = map[string]map[string]int64{}
	}

	for _, row := range rows {
		if row.Value1 == nil {
			continue
		}
		v1 := normalizeValue(*row.Value1)

		if row.Attribute2 == nil || strings.TrimSpace(*row.Attribute2) == "" {
			if table, ok := b.Marginal[row.Attribute1]; ok {
				table[v1] = row.Count
			}
			continue
		}

		if row.Value2 == nil {
			continue
		}
		key := row.Attribute1 + "_" + strings.TrimSpace(*row.Attribute2)
		table, ok := b.Joint[key]
		if !ok {
			table = map[string]map[string]int64{}
			b.Joint[key] = table
		}
		inner, ok := table[v1]
		if !ok {
			inner = map[string]int64{}
			table[v1] = inner
		}
		inner[normalizeValue(*row.Value2)] = row.Count
	}
	return b
}

// normalizeValue renders numeric category values as integers ("2.0" → "2").
// Non-numeric values are returned trimmed.
func normalizeValue(raw string) string {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return raw
	}
	return strconv.FormatInt(int64(f), 10)
}
