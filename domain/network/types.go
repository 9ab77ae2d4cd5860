// Package network holds the domain model of the comorbidity network: the
// association and disease records read from the store, the parameters that
// select them, and the schema handed to the graph renderer.
package network

// DiseaseCode identifies a disease. It joins association records to disease
// metadata and is the identity of a graph node.
type DiseaseCode string

// AssociationRecord is one directed, time-windowed cause→outcome statistic.
type AssociationRecord struct {
	Cause           DiseaseCode `db:"cause_abb" json:"cause"`
	Outcome         DiseaseCode `db:"outcome_abb" json:"outcome"`
	FollowUp        int         `db:"fu" json:"follow_up"`
	RelativeRisk    float64     `db:"rr_values" json:"relative_risk"`
	LogRelativeRisk float64     `db:"log_rr_values" json:"log_relative_risk"`
	ChisqP          float64     `db:"adjusted_chisq_p_values" json:"chisq_p"`
	FisherP         float64     `db:"adjusted_fisher_p_values" json:"fisher_p"`
}

// RR returns the relative risk on the given scale.
func (r AssociationRecord) RR(scale RRScale) float64 {
	if scale == RRScaleLog {
		return r.LogRelativeRisk
	}
	return r.RelativeRisk
}

// DiseaseMetadata describes how a disease is displayed. Width and Height are
// optional scale hints.
type DiseaseMetadata struct {
	Code        DiseaseCode `json:"code"`
	DisplayName string      `json:"display_name"`
	EnglishName string      `json:"english_name,omitempty"`
	Width       *float64    `json:"width,omitempty"`
	Height      *float64    `json:"height,omitempty"`
}

// MetadataIndex looks up disease metadata by code.
type MetadataIndex map[DiseaseCode]DiseaseMetadata

// IndexMetadata builds a MetadataIndex. Later rows win on duplicate codes.
func IndexMetadata(rows []DiseaseMetadata) MetadataIndex {
	idx := make(MetadataIndex, len(rows))
	for _, row := range rows {
		idx[row.Code] = row
	}
	return idx
}

// AssociationQuery is the accessor-level selection built by the edge filter.
type AssociationQuery struct {
	FollowUp  int
	RRMin     float64
	RRMax     float64
	RRScale   RRScale
	ChisqMax  float64
	FisherMax float64
	// Seeds, when non-empty, keeps only records touching at least one seed.
	Seeds []DiseaseCode
}

// Matches reports whether rec satisfies the query. SQL accessors express the
// same predicate in their WHERE clause.
func (q AssociationQuery) Matches(rec AssociationRecord) bool {
	if rec.FollowUp != q.FollowUp {
		return false
	}
	rr := rec.RR(q.RRScale)
	if rr < q.RRMin || rr > q.RRMax {
		return false
	}
	if rec.ChisqP > q.ChisqMax || rec.FisherP > q.FisherMax {
		return false
	}
	if len(q.Seeds) == 0 {
		return true
	}
	for _, seed := range q.Seeds {
		if rec.Cause == seed || rec.Outcome == seed {
			return true
		}
	}
	return false
}

// AttributeKind selects the attribute table of a detail lookup.
type AttributeKind string

const (
	AttributeKindNode AttributeKind = "node"
	AttributeKindEdge AttributeKind = "edge"
)

// AttributeQuery selects demographic attribute rows for a node or an edge.
type AttributeQuery struct {
	Kind     AttributeKind
	Node     DiseaseCode
	FollowUp int
	Cause    DiseaseCode
	Outcome  DiseaseCode
}

// AttributeRow is one (attribute, value[, attribute, value]) count.
type AttributeRow struct {
	Attribute1 string
	Value1     *string
	Attribute2 *string
	Value2     *string
	Count      int64
}

// NodeAttributeRecord is an attribute row keyed to a disease, as ingested.
type NodeAttributeRecord struct {
	Node DiseaseCode
	AttributeRow
}

// EdgeAttributeRecord is an attribute row keyed to an association, as ingested.
type EdgeAttributeRecord struct {
	FollowUp int
	Cause    DiseaseCode
	Outcome  DiseaseCode
	AttributeRow
}
