package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"cotdex/domain/network"

	"github.com/jmoiron/sqlx"
)

// Loader replaces table contents from ingested exports. Each Load call runs
// in one transaction: the table is emptied and refilled, or left untouched.
type Loader struct {
	db *sqlx.DB
}

// NewLoader creates a loader on db.
func NewLoader(db *sqlx.DB) *Loader {
	return &Loader{db: db}
}

type edgeStatInsert struct {
	Cause    string          `db:"cause_abb"`
	Outcome  string          `db:"outcome_abb"`
	FollowUp int             `db:"fu"`
	RR       float64         `db:"rr_values"`
	LogRR    sql.NullFloat64 `db:"log_rr_values"`
	ChisqP   float64         `db:"adjusted_chisq_p_values"`
	FisherP  float64         `db:"adjusted_fisher_p_values"`
}

type nodeBaseInsert struct {
	Code    string          `db:"node_code"`
	Korean  sql.NullString  `db:"korean"`
	English sql.NullString  `db:"english"`
	Width   sql.NullFloat64 `db:"width"`
	Height  sql.NullFloat64 `db:"height"`
}

type nodeAttrInsert struct {
	Node string `db:"node_code"`
	attributeInsert
}

type edgeAttrInsert struct {
	FollowUp int    `db:"fu"`
	Cause    string `db:"cause_abb"`
	Outcome  string `db:"outcome_abb"`
	attributeInsert
}

type attributeInsert struct {
	Attribute1 string         `db:"attribute_1"`
	Value1     sql.NullString `db:"value_1"`
	Attribute2 sql.NullString `db:"attribute_2"`
	Value2     sql.NullString `db:"value_2"`
	Count      int64          `db:"count"`
}

// LoadAssociations replaces edge_stat. NaN log relative risks are stored as NULL.
func (l *Loader) LoadAssociations(ctx context.Context, records []network.AssociationRecord) (int, error) {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		rows[i] = edgeStatInsert{
			Cause:    string(r.Cause),
			Outcome:  string(r.Outcome),
			FollowUp: r.FollowUp,
			RR:       r.RelativeRisk,
			LogRR:    finiteOrNull(r.LogRelativeRisk),
			ChisqP:   r.ChisqP,
			FisherP:  r.FisherP,
		}
	}
	return l.replace(ctx, "edge_stat", `
		INSERT INTO edge_stat (cause_abb, outcome_abb, fu, rr_values, log_rr_values,
		                       adjusted_chisq_p_values, adjusted_fisher_p_values)
		VALUES (:cause_abb, :outcome_abb, :fu, :rr_values, :log_rr_values,
		        :adjusted_chisq_p_values, :adjusted_fisher_p_values)`, rows)
}

// LoadMetadata replaces node_base.
func (l *Loader) LoadMetadata(ctx context.Context, metadata []network.DiseaseMetadata) (int, error) {
	rows := make([]interface{}, len(metadata))
	for i, m := range metadata {
		rows[i] = nodeBaseInsert{
			Code:    string(m.Code),
			Korean:  toNullString(&m.DisplayName),
			English: toNullString(&m.EnglishName),
			Width:   toNullFloat(m.Width),
			Height:  toNullFloat(m.Height),
		}
	}
	return l.replace(ctx, "node_base", `
		INSERT INTO node_base (node_code, korean, english, width, height)
		VALUES (:node_code, :korean, :english, :width, :height)`, rows)
}

// LoadNodeAttributes replaces node_attr.
func (l *Loader) LoadNodeAttributes(ctx context.Context, records []network.NodeAttributeRecord) (int, error) {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		rows[i] = nodeAttrInsert{Node: string(r.Node), attributeInsert: toAttributeInsert(r.AttributeRow)}
	}
	return l.replace(ctx, "node_attr", `
		INSERT INTO node_attr (node_code, attribute_1, value_1, attribute_2, value_2, "count")
		VALUES (:node_code, :attribute_1, :value_1, :attribute_2, :value_2, :count)`, rows)
}

// LoadEdgeAttributes replaces edge_attr.
func (l *Loader) LoadEdgeAttributes(ctx context.Context, records []network.EdgeAttributeRecord) (int, error) {
	rows := make([]interface{}, len(records))
	for i, r := range records {
		rows[i] = edgeAttrInsert{
			FollowUp:        r.FollowUp,
			Cause:           string(r.Cause),
			Outcome:         string(r.Outcome),
			attributeInsert: toAttributeInsert(r.AttributeRow),
		}
	}
	return l.replace(ctx, "edge_attr", `
		INSERT INTO edge_attr (fu, cause_abb, outcome_abb, attribute_1, value_1, attribute_2, value_2, "count")
		VALUES (:fu, :cause_abb, :outcome_abb, :attribute_1, :value_1, :attribute_2, :value_2, :count)`, rows)
}

// replace empties table and inserts rows with insertSQL inside one transaction.
// table is always one of the fixed names above.
func (l *Loader) replace(ctx context.Context, table, insertSQL string, rows []interface{}) (n int, err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin %s load: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err = stmt.ExecContext(ctx, row); err != nil {
			return 0, fmt.Errorf("insert %s row %d: %w", table, i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s load: %w", table, err)
	}
	return len(rows), nil
}

func toAttributeInsert(row network.AttributeRow) attributeInsert {
	return attributeInsert{
		Attribute1: row.Attribute1,
		Value1:     toNullString(row.Value1),
		Attribute2: toNullString(row.Attribute2),
		Value2:     toNullString(row.Value2),
		Count:      row.Count,
	}
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return finiteOrNull(*f)
}

func finiteOrNull(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
