package helpers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/bookinglens/engine"
)

// xlsxDateLayout is how date serials are handed to the engine's date parser.
const xlsxDateLayout = "2006-01-02T15:04:05"

// ParseXLSX reads the first worksheet of a workbook the same way ParseCSV
// reads a file: first row is the header, blank rows are skipped. Cells are
// read as stored values, not display text, and date serials in the resolved
// arrival and entered date columns become ISO timestamps.
func ParseXLSX(data []byte, opts ...engine.Option) ([]string, []engine.RawRow, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("no worksheet found: %w", ErrNoHeaderRow)
	}
	records, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}
	if len(records) == 0 || isBlank(records[0]) {
		return nil, nil, ErrNoHeaderRow
	}

	headers := records[0]
	rows := toRawRows(headers, records[1:])

	cols, err := engine.ResolveColumns(headers, opts...)
	if err != nil {
		return nil, nil, err
	}
	date1904 := false
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	for _, row := range rows {
		for _, header := range []string{cols.ArrivalDate, cols.EnteredDate} {
			if v, ok := row[header]; ok {
				row[header] = serialToDate(v, date1904)
			}
		}
	}
	return headers, rows, nil
}

// serialToDate turns an Excel date serial into an ISO timestamp. Text that
// is not a positive number is returned unchanged.
func serialToDate(v string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v
	}
	return t.UTC().Format(xlsxDateLayout)
}

// ParseFileDataset loads a booking export, choosing the decoder by file
// extension: .xlsx / .xlsm are workbooks, anything else is CSV.
func ParseFileDataset(name string, data []byte, opts ...engine.Option) (*engine.Dataset, error) {
	var headers []string
	var rows []engine.RawRow
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		headers, rows, err = ParseXLSX(data, opts...)
	default:
		headers, rows, err = ParseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return engine.LoadWithHeaders(headers, rows, opts...)
}
