package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// CLIENT — reads the pre-aggregated tables from the warehouse
// ============================================================================
// The warehouse schema is not declared anywhere in this repo: tables are
// built from whatever columns the query returns, typed from the driver's
// column metadata. Schema expectations live with the callers (filters name
// their columns and fail loudly on drift).
// ============================================================================

const (
	peopleTable   = "people_aggregated"
	sessionsTable = "sessions_aggregated"
)

// Client reads the aggregated datasets from the warehouse database.
type Client struct {
	db        *sql.DB
	projectID string
}

// Open connects to the warehouse and verifies the connection.
func Open(cfg Config) (*Client, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return &Client{db: db, projectID: cfg.ProjectID}, nil
}

// Close closes the warehouse connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// FetchDatasets reads both aggregated tables. A failure on either aborts
// the whole fetch — the load cycle never returns a partial pair.
func (c *Client) FetchDatasets(ctx context.Context) (people, sessions *engine.Table, err error) {
	people, err = c.fetchTable(ctx, peopleTable)
	if err != nil {
		return nil, nil, fmt.Errorf("loading people data: %w", err)
	}
	sessions, err = c.fetchTable(ctx, sessionsTable)
	if err != nil {
		return nil, nil, fmt.Errorf("loading sessions data: %w", err)
	}
	return people, sessions, nil
}

func (c *Client) fetchTable(ctx context.Context, table string) (*engine.Table, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", table, err)
	}

	kinds := make([]engine.Kind, len(cols))
	for i, ct := range types {
		kinds[i] = kindFromDeclaredType(ct.DatabaseTypeName())
	}

	tbl, err := engine.NewTable(cols)
	if err != nil {
		return nil, fmt.Errorf("schema of %s: %w", table, err)
	}

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		cells := make([]engine.Value, len(cols))
		for i, v := range raw {
			cells[i] = cellValue(v, kinds[i])
		}
		if err := tbl.AppendRow(cells...); err != nil {
			return nil, fmt.Errorf("append %s row: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return tbl, nil
}

// kindFromDeclaredType maps the warehouse's declared column type to a cell
// kind. SQLite stores booleans and timestamps in its storage classes, so
// the declared type is the only signal.
func kindFromDeclaredType(declared string) engine.Kind {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "BOOL"):
		return engine.KindBool
	case strings.Contains(d, "TIMESTAMP"), strings.Contains(d, "DATE"):
		return engine.KindTime
	case strings.Contains(d, "INT"), strings.Contains(d, "REAL"),
		strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"),
		strings.Contains(d, "NUM"), strings.Contains(d, "DEC"):
		return engine.KindNumber
	default:
		return engine.KindString
	}
}

// Timestamp layouts the warehouse export is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// cellValue converts one scanned cell to a typed value. An unparseable
// timestamp becomes a null cell, not an error — it then simply fails any
// date predicate (per-row anomalies never abort a fetch).
func cellValue(raw any, kind engine.Kind) engine.Value {
	if raw == nil {
		return engine.Null(kind)
	}

	switch kind {
	case engine.KindBool:
		switch v := raw.(type) {
		case bool:
			return engine.Bool(v)
		case int64:
			return engine.Bool(v != 0)
		case float64:
			return engine.Bool(v != 0)
		}
		return engine.Null(engine.KindBool)

	case engine.KindNumber:
		switch v := raw.(type) {
		case int64:
			return engine.Number(float64(v))
		case float64:
			return engine.Number(v)
		}
		return engine.Null(engine.KindNumber)

	case engine.KindTime:
		switch v := raw.(type) {
		case time.Time:
			return engine.Time(v)
		case string:
			for _, layout := range timestampLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return engine.Time(t)
				}
			}
		case []byte:
			return cellValue(string(v), engine.KindTime)
		}
		return engine.Null(engine.KindTime)

	default:
		switch v := raw.(type) {
		case string:
			return engine.String(v)
		case []byte:
			return engine.String(string(v))
		}
		return engine.String(fmt.Sprintf("%v", raw))
	}
}
