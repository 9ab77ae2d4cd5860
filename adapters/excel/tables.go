package excel

import (
	"fmt"
	"math"
	"strconv"

	"cotdex/domain/network"
)

// Column headers expected in the exports. They match the table columns.
const (
	colCause   = "cause_abb"
	colOutcome = "outcome_abb"
	colFU      = "fu"
	colRR      = "rr_values"
	colLogRR   = "log_rr_values"
	colChisq   = "adjusted_chisq_p_values"
	colFisher  = "adjusted_fisher_p_values"

	colNode    = "node_code"
	colKorean  = "korean"
	colEnglish = "english"
	colWidth   = "width"
	colHeight  = "height"

	colAttr1  = "attribute_1"
	colValue1 = "value_1"
	colAttr2  = "attribute_2"
	colValue2 = "value_2"
	colCount  = "count"
)

func requireColumns(d *SheetData, headers ...string) error {
	for _, h := range headers {
		if !d.Has(h) {
			return fmt.Errorf("missing column %q", h)
		}
	}
	return nil
}

// EdgeRecords converts an edge_stat export. When log_rr_values is absent it
// is derived as the natural log of rr_values.
func EdgeRecords(d *SheetData) ([]network.AssociationRecord, error) {
	if err := requireColumns(d, colCause, colOutcome, colFU, colRR, colChisq, colFisher); err != nil {
		return nil, err
	}
	hasLog := d.Has(colLogRR)

	out := make([]network.AssociationRecord, 0, len(d.Rows))
	for i, row := range d.Rows {
		line := i + 2
		p := rowParser{row: row, line: line}
		rec := network.AssociationRecord{
			Cause:        network.DiseaseCode(p.text(colCause)),
			Outcome:      network.DiseaseCode(p.text(colOutcome)),
			FollowUp:     p.integer(colFU),
			RelativeRisk: p.float(colRR),
			ChisqP:       p.float(colChisq),
			FisherP:      p.float(colFisher),
		}
		if hasLog && row[colLogRR] != "" {
			rec.LogRelativeRisk = p.float(colLogRR)
		} else {
			rec.LogRelativeRisk = math.Log(rec.RelativeRisk)
		}
		if p.err == nil && (rec.Cause == "" || rec.Outcome == "") {
			p.err = fmt.Errorf("line %d: cause and outcome are required", line)
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// NodeRecords converts a node_base export. width, height and english are
// optional columns.
func NodeRecords(d *SheetData) ([]network.DiseaseMetadata, error) {
	if err := requireColumns(d, colNode, colKorean); err != nil {
		return nil, err
	}

	out := make([]network.DiseaseMetadata, 0, len(d.Rows))
	for i, row := range d.Rows {
		p := rowParser{row: row, line: i + 2}
		m := network.DiseaseMetadata{
			Code:        network.DiseaseCode(p.text(colNode)),
			DisplayName: p.text(colKorean),
			EnglishName: p.text(colEnglish),
			Width:       p.optionalFloat(colWidth),
			Height:      p.optionalFloat(colHeight),
		}
		if p.err == nil && m.Code == "" {
			p.err = fmt.Errorf("line %d: node_code is required", p.line)
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, m)
	}
	return out, nil
}

// NodeAttributeRecords converts a node_attr export.
func NodeAttributeRecords(d *SheetData) ([]network.NodeAttributeRecord, error) {
	if err := requireColumns(d, colNode, colAttr1, colValue1, colCount); err != nil {
		return nil, err
	}

	out := make([]network.NodeAttributeRecord, 0, len(d.Rows))
	for i, row := range d.Rows {
		p := rowParser{row: row, line: i + 2}
		rec := network.NodeAttributeRecord{
			Node:         network.DiseaseCode(p.text(colNode)),
			AttributeRow: p.attribute(),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// EdgeAttributeRecords converts an edge_attr export.
func EdgeAttributeRecords(d *SheetData) ([]network.EdgeAttributeRecord, error) {
	if err := requireColumns(d, colFU, colCause, colOutcome, colAttr1, colValue1, colCount); err != nil {
		return nil, err
	}

	out := make([]network.EdgeAttributeRecord, 0, len(d.Rows))
	for i, row := range d.Rows {
		p := rowParser{row: row, line: i + 2}
		rec := network.EdgeAttributeRecord{
			FollowUp:     p.integer(colFU),
			Cause:        network.DiseaseCode(p.text(colCause)),
			Outcome:      network.DiseaseCode(p.text(colOutcome)),
			AttributeRow: p.attribute(),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, rec)
	}
	return out, nil
}

// rowParser converts cells of one row, keeping the first error.
type rowParser struct {
	row  RawRowData
	line int
	err  error
}

func (p *rowParser) text(col string) string {
	return p.row[col]
}

func (p *rowParser) optionalText(col string) *string {
	v, ok := p.row[col]
	if !ok || v == "" {
		return nil
	}
	return &v
}

func (p *rowParser) float(col string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.row[col], 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: %s: %q is not a number", p.line, col, p.row[col])
	}
	return v
}

func (p *rowParser) optionalFloat(col string) *float64 {
	if p.row[col] == "" {
		return nil
	}
	v := p.float(col)
	if p.err != nil {
		return nil
	}
	return &v
}

// integer accepts "3" as well as spreadsheet renderings like "3.0".
func (p *rowParser) integer(col string) int {
	if p.err != nil {
		return 0
	}
	raw := p.row[col]
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		p.err = fmt.Errorf("line %d: %s: %q is not an integer", p.line, col, raw)
		return 0
	}
	return int(f)
}

func (p *rowParser) attribute() network.AttributeRow {
	row := network.AttributeRow{
		Attribute1: p.text(colAttr1),
		Value1:     p.optionalText(colValue1),
		Attribute2: p.optionalText(colAttr2),
		Value2:     p.optionalText(colValue2),
		Count:      int64(p.integer(colCount)),
	}
	if p.err == nil && row.Attribute1 == "" {
		p.err = fmt.Errorf("line %d: attribute_1 is required", p.line)
	}
	return row
}
