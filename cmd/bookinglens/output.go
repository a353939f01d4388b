package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/bookinglens/engine"
)

// ============================================================================
// OUTPUT — json / pretty / yaml / csv / xlsx renderers
// ============================================================================

var formats = []string{"json", "pretty", "yaml", "csv", "xlsx"}

func validFormat(format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// orderedResults marshals as one object keyed by view name, in request order.
type orderedResults []result

func (o orderedResults) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Value)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", r.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// payload is what the structured formats print: the bare value for a single
// view, an ordered object otherwise.
func payload(results []result) any {
	if len(results) == 1 {
		return results[0].Value
	}
	return orderedResults(results)
}

func render(w io.Writer, format string, results []result) error {
	switch format {
	case "json", "pretty":
		return writeJSON(w, payload(results), format)
	case "yaml":
		return writeYAML(w, payload(results))
	case "csv":
		tables, err := tablesFor(results)
		if err != nil {
			return err
		}
		return writeCSV(w, tables)
	case "xlsx":
		tables, err := tablesFor(results)
		if err != nil {
			return err
		}
		return writeXLSX(w, tables)
	}
	return fmt.Errorf("unknown format %q", format)
}

func tablesFor(results []result) ([]*engine.TableData, error) {
	tables := make([]*engine.TableData, 0, len(results))
	for _, r := range results {
		if t, ok := r.Value.(*engine.TableData); ok {
			tables = append(tables, t)
			continue
		}
		t, err := engine.Tabulate(r.Name, r.Value)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ============================================================================
// JSON / YAML OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeYAML goes through JSON so field names and order match the json
// output, then drops the JSON flow styling.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to convert output: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// ============================================================================
// CSV OUTPUT — Sheets-ready tables, blank line between views
// ============================================================================

func writeCSV(w io.Writer, tables []*engine.TableData) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			_ = cw.Write([]string{})
		}
		if len(tables) > 1 {
			_ = cw.Write([]string{t.Title})
		}
		_ = cw.Write(headerRow(t))
		for _, row := range t.Rows {
			_ = cw.Write(row)
		}
		if row := summaryRow(t); row != nil {
			_ = cw.Write(row)
		}
	}
	cw.Flush()
	return cw.Error()
}

func headerRow(t *engine.TableData) []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}

// summaryRow puts the summary label in the first column and each value under
// its column key.
func summaryRow(t *engine.TableData) []string {
	if t.Summary == nil || len(t.Columns) == 0 {
		return nil
	}
	row := make([]string, len(t.Columns))
	row[0] = t.Summary.Label
	for i, c := range t.Columns {
		if v, ok := t.Summary.Values[c.Key]; ok && i > 0 {
			row[i] = v
		}
	}
	return row
}

// ============================================================================
// XLSX OUTPUT — One worksheet per view
// ============================================================================

func writeXLSX(w io.Writer, tables []*engine.TableData) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	used := map[string]bool{}
	first := f.GetSheetName(0)
	for i, t := range tables {
		name := sheetName(t.Title, i, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		rows := [][]string{headerRow(t)}
		rows = append(rows, t.Rows...)
		if s := summaryRow(t); s != nil {
			rows = append(rows, s)
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := sheetValues(t.Columns, row, r == 0)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("sheet %s: %w", name, err)
			}
		}
	}
	return f.Write(w)
}

var numberFormatting = strings.NewReplacer("$", "", ",", "", "%", "")

// sheetValues keeps numeric cells numeric so spreadsheet formulas work.
func sheetValues(columns []engine.Column, row []string, header bool) []any {
	values := make([]any, len(row))
	for i, cell := range row {
		values[i] = cell
		if header || i >= len(columns) || columns[i].Type == "text" {
			continue
		}
		if n, err := strconv.ParseFloat(numberFormatting.Replace(cell), 64); err == nil {
			values[i] = n
		}
	}
	return values
}

// sheetName makes a unique worksheet name within Excel's 31-character limit.
func sheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Sheet" + strconv.Itoa(index+1)
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
