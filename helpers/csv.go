package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// CSV HELPER — serialization boundary for downloads and fixtures
// ============================================================================
// WriteCSV serializes exactly the visible rows and columns of a view:
// header row of column names, one record per row, encoding/csv quoting.
// ReadCSV goes the other way and builds a typed table from CSV bytes, so
// demos and tests can run without a warehouse.
// ============================================================================

// WriteCSV serializes a view. Null cells render empty, timestamps render
// RFC 3339, booleans render true/false.
func WriteCSV(w io.Writer, rs engine.Rowset) error {
	cw := csv.NewWriter(w)

	cols := rs.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for i := 0; i < rs.Len(); i++ {
		for j, col := range cols {
			record[j] = rs.Value(i, col).Render()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFile writes a view to path atomically — the file appears complete
// or not at all.
func ExportFile(path string, rs engine.Rowset) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rs); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// ============================================================================
// CSV PARSING — typed fixture tables
// ============================================================================

// ReadCSV parses CSV bytes into a typed table. Column kinds are inferred
// by scanning every cell: a column where all non-empty cells parse as
// booleans is a bool column, then numbers, then timestamps, otherwise
// string. Empty cells become nulls of the column's kind.
func ReadCSV(data []byte) (*engine.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var records [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		records = append(records, row)
	}

	kinds := make([]engine.Kind, len(headers))
	for col := range headers {
		kinds[col] = inferColumnKind(records, col)
	}

	tbl, err := engine.NewTable(headers)
	if err != nil {
		return nil, err
	}

	for _, row := range records {
		cells := make([]engine.Value, len(headers))
		for col := range headers {
			var raw string
			if col < len(row) {
				raw = strings.TrimSpace(row[col])
			}
			cells[col] = parseCell(raw, kinds[col])
		}
		if err := tbl.AppendRow(cells...); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

func inferColumnKind(records [][]string, col int) engine.Kind {
	kind := engine.KindString
	sawValue := false

	isBool := true
	isNumber := true
	isTime := true

	for _, row := range records {
		if col >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[col])
		if raw == "" {
			continue
		}
		sawValue = true

		if _, ok := parseBoolCell(raw); !ok {
			isBool = false
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			isNumber = false
		}
		if _, ok := parseTimestamp(raw); !ok {
			isTime = false
		}
	}

	if !sawValue {
		return kind
	}
	switch {
	case isBool:
		return engine.KindBool
	case isNumber:
		return engine.KindNumber
	case isTime:
		return engine.KindTime
	default:
		return engine.KindString
	}
}

func parseCell(raw string, kind engine.Kind) engine.Value {
	if raw == "" {
		return engine.Null(kind)
	}
	switch kind {
	case engine.KindBool:
		b, ok := parseBoolCell(raw)
		if !ok {
			return engine.Null(engine.KindBool)
		}
		return engine.Bool(b)
	case engine.KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return engine.Null(engine.KindNumber)
		}
		return engine.Number(f)
	case engine.KindTime:
		if t, ok := parseTimestamp(raw); ok {
			return engine.Time(t)
		}
		return engine.Null(engine.KindTime)
	default:
		return engine.String(raw)
	}
}

// parseBoolCell accepts only spelled-out booleans. "1"/"0" stay numeric —
// strconv.ParseBool would swallow whole count columns otherwise.
func parseBoolCell(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

var csvTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range csvTimestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
