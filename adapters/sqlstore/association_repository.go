package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"cotdex/domain/network"
	"cotdex/ports"

	"github.com/jmoiron/sqlx"
)

// rrColumns maps a relative-risk scale to its edge_stat column. Only these
// identifiers are ever spliced into SQL.
var rrColumns = map[network.RRScale]string{
	network.RRScaleRaw: "rr_values",
	network.RRScaleLog: "log_rr_values",
}

// AssociationRepository reads edge_stat, node_base, node_attr and edge_attr.
type AssociationRepository struct {
	db *sqlx.DB
}

var _ ports.AssociationStore = (*AssociationRepository)(nil)

// NewAssociationRepository creates a repository on db.
func NewAssociationRepository(db *sqlx.DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

type associationRow struct {
	Cause    string          `db:"cause_abb"`
	Outcome  string          `db:"outcome_abb"`
	FollowUp int             `db:"fu"`
	RR       float64         `db:"rr_values"`
	LogRR    sql.NullFloat64 `db:"log_rr_values"`
	ChisqP   float64         `db:"adjusted_chisq_p_values"`
	FisherP  float64         `db:"adjusted_fisher_p_values"`
}

// QueryAssociations selects edge_stat rows matching q, ordered by
// (cause_abb, outcome_abb, fu) so identical queries return identical order.
func (r *AssociationRepository) QueryAssociations(ctx context.Context, q network.AssociationQuery) ([]network.AssociationRecord, error) {
	col, ok := rrColumns[q.RRScale]
	if !ok {
		return nil, fmt.Errorf("unknown relative risk scale %q", q.RRScale)
	}

	query := `
		SELECT cause_abb, outcome_abb, fu, rr_values, log_rr_values,
		       adjusted_chisq_p_values, adjusted_fisher_p_values
		FROM edge_stat
		WHERE fu = ?
		  AND ` + col + ` BETWEEN ? AND ?
		  AND adjusted_chisq_p_values <= ?
		  AND adjusted_fisher_p_values <= ?`
	args := []interface{}{q.FollowUp, q.RRMin, q.RRMax, q.ChisqMax, q.FisherMax}

	if len(q.Seeds) > 0 {
		codes := make([]string, len(q.Seeds))
		for i, s := range q.Seeds {
			codes[i] = string(s)
		}
		query += `
		  AND (cause_abb IN (?) OR outcome_abb IN (?))`
		args = append(args, codes, codes)

		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("expand seed list: %w", err)
		}
	}
	query += `
		ORDER BY cause_abb, outcome_abb, fu`

	var rows []associationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select edge_stat: %w", err)
	}

	records := make([]network.AssociationRecord, len(rows))
	for i, row := range rows {
		records[i] = network.AssociationRecord{
			Cause:           network.DiseaseCode(row.Cause),
			Outcome:         network.DiseaseCode(row.Outcome),
			FollowUp:        row.FollowUp,
			RelativeRisk:    row.RR,
			LogRelativeRisk: row.LogRR.Float64,
			ChisqP:          row.ChisqP,
			FisherP:         row.FisherP,
		}
	}
	return records, nil
}

type metadataRow struct {
	Code    string          `db:"node_code"`
	Korean  sql.NullString  `db:"korean"`
	English sql.NullString  `db:"english"`
	Width   sql.NullFloat64 `db:"width"`
	Height  sql.NullFloat64 `db:"height"`
}

// QueryMetadata lists node_base ordered by code.
func (r *AssociationRepository) QueryMetadata(ctx context.Context) ([]network.DiseaseMetadata, error) {
	var rows []metadataRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT node_code, korean, english, width, height
		FROM node_base
		ORDER BY node_code
	`)
	if err != nil {
		return nil, fmt.Errorf("select node_base: %w", err)
	}

	out := make([]network.DiseaseMetadata, len(rows))
	for i, row := range rows {
		out[i] = network.DiseaseMetadata{
			Code:        network.DiseaseCode(row.Code),
			DisplayName: row.Korean.String,
			EnglishName: row.English.String,
			Width:       nullFloat(row.Width),
			Height:      nullFloat(row.Height),
		}
	}
	return out, nil
}

type attributeRow struct {
	Attribute1 string         `db:"attribute_1"`
	Value1     sql.NullString `db:"value_1"`
	Attribute2 sql.NullString `db:"attribute_2"`
	Value2     sql.NullString `db:"value_2"`
	Count      int64          `db:"count"`
}

// QueryAttributes reads node_attr or edge_attr depending on q.Kind.
func (r *AssociationRepository) QueryAttributes(ctx context.Context, q network.AttributeQuery) ([]network.AttributeRow, error) {
	var (
		query string
		args  []interface{}
	)
	switch q.Kind {
	case network.AttributeKindNode:
		query = `
			SELECT attribute_1, value_1, attribute_2, value_2, "count"
			FROM node_attr
			WHERE node_code = ?`
		args = []interface{}{string(q.Node)}
	case network.AttributeKindEdge:
		query = `
			SELECT attribute_1, value_1, attribute_2, value_2, "count"
			FROM edge_attr
			WHERE fu = ? AND cause_abb = ? AND outcome_abb = ?`
		args = []interface{}{q.FollowUp, string(q.Cause), string(q.Outcome)}
	default:
		return nil, fmt.Errorf("unknown attribute kind %q", q.Kind)
	}

	var rows []attributeRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select %s_attr: %w", q.Kind, err)
	}

	out := make([]network.AttributeRow, len(rows))
	for i, row := range rows {
		out[i] = network.AttributeRow{
			Attribute1: row.Attribute1,
			Value1:     nullString(row.Value1),
			Attribute2: nullString(row.Attribute2),
			Value2:     nullString(row.Value2),
			Count:      row.Count,
		}
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
