package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/bookinglens/engine"
)

// ============================================================================
// CSV HELPER — Parses booking-export CSV data into engine.RawRows
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// This helper turns the raw bytes into header-keyed rows; column resolution
// and normalization stay in the engine.
// ============================================================================

// ErrNoHeaderRow is returned when the input has no header row.
var ErrNoHeaderRow = errors.New("helpers: no header row")

// utf8BOM is stripped from the front of CSV input.
const utf8BOM = "\ufeff"

// ParseCSV reads CSV bytes into the header row and one RawRow per data row.
// Blank lines are skipped. Short rows leave the missing columns out of the
// map; extra fields beyond the header are dropped. Cell text is kept as-is.
func ParseCSV(data []byte) ([]string, []engine.RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeaderRow
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var records [][]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		records = append(records, fields)
	}

	return headers, toRawRows(headers, records), nil
}

// ParseCSVDataset parses CSV bytes and loads them into a Dataset, honoring
// the file's column order for revenue-column detection.
func ParseCSVDataset(data []byte, opts ...engine.Option) (*engine.Dataset, error) {
	headers, rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	return engine.LoadWithHeaders(headers, rows, opts...)
}

// toRawRows keys each record by header, skipping blank records.
func toRawRows(headers []string, records [][]string) []engine.RawRow {
	rows := make([]engine.RawRow, 0, len(records))
	for _, fields := range records {
		if isBlank(fields) {
			continue
		}
		row := make(engine.RawRow, len(headers))
		for i, val := range fields {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = val
		}
		rows = append(rows, row)
	}
	return rows
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
