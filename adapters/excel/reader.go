// Package excel reads the tabular edge, node and attribute exports the
// database is loaded from. Both .xlsx workbooks and .csv files are accepted.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cotdex/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader reads one export file. Workbooks are read from their first sheet
// unless Sheet names another.
type DataReader struct {
	path  string
	csv   bool
	Sheet string
	log   *internal.Logger
}

// NewDataReader picks the format from the file extension: ".csv" is read as
// CSV, everything else as a workbook.
func NewDataReader(path string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{
		path: path,
		csv:  strings.EqualFold(filepath.Ext(path), ".csv"),
		log:  logger.With("reader"),
	}
}

// ReadData returns the header row and every non-blank data row.
func (r *DataReader) ReadData() (*SheetData, error) {
	start := time.Now()
	var (
		data *SheetData
		err  error
	)
	if r.csv {
		data, err = r.readCSV()
	} else {
		data, err = r.readWorkbook()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(r.path), err)
	}
	r.log.Info("%s: %d columns, %d rows in %s", filepath.Base(r.path), len(data.Headers), len(data.Rows), time.Since(start).Round(time.Millisecond))
	return data, nil
}

func (r *DataReader) readWorkbook() (*SheetData, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var b sheetBuilder
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if err := b.add(cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return b.finish()
}

func (r *DataReader) readCSV() (*SheetData, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var b sheetBuilder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.add(record); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

// sheetBuilder turns raw records into SheetData. The first record is the
// header; cells past the header width are dropped and blank records skipped.
type sheetBuilder struct {
	data *SheetData
	line int
}

func (b *sheetBuilder) add(record []string) error {
	b.line++
	if b.data == nil {
		headers := make([]string, len(record))
		seen := make(map[string]bool, len(record))
		for i, h := range record {
			// Spreadsheet CSV exports usually start with a UTF-8 BOM.
			h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			if h != "" && seen[h] {
				return fmt.Errorf("duplicate column %q", h)
			}
			seen[h] = true
			headers[i] = h
		}
		b.data = &SheetData{Headers: headers}
		return nil
	}

	row := make(RawRowData, len(b.data.Headers))
	blank := true
	for i, cell := range record {
		if i >= len(b.data.Headers) {
			break
		}
		cell = strings.TrimSpace(cell)
		if cell != "" {
			blank = false
		}
		row[b.data.Headers[i]] = cell
	}
	if !blank {
		b.data.Rows = append(b.data.Rows, row)
	}
	return nil
}

func (b *sheetBuilder) finish() (*SheetData, error) {
	if b.data == nil {
		return nil, fmt.Errorf("no header row")
	}
	return b.data, nil
}
