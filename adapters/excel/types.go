package excel

// RawRowData represents a row of raw sheet data as header → cell text
type RawRowData map[string]string

// SheetData represents a complete sheet or CSV file
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Has reports whether the sheet carries a column named header.
func (d *SheetData) Has(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}
