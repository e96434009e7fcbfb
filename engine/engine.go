// Package engine wraps an in-process DuckDB connection (database/sql driver
// github.com/duckdb/duckdb-go/v2) as the embedded columnar relational
// engine design note 9 calls for: the wide builder's pivots and joins, and
// the hourly aggregator's group-bys, all compile to SQL run against a
// private in-memory database opened for the duration of one top-level
// operation and torn down — temp tables included — before returning.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"clifgo/clif"
	"clifgo/schema"
)

// Conn is one private, in-memory DuckDB connection plus the set of temp
// tables it has registered, so Close can drop every one of them even on a
// failure path (§5: "temporary tables ... must be released before
// returning even on failure paths").
type Conn struct {
	db         *sql.DB
	registered []string
}

// Open starts a fresh in-memory DuckDB connection. preserve_insertion_order
// is left at DuckDB's true default and set explicitly, since first-wins
// pivots (§9) depend on row order surviving into first()/last().
func Open(ctx context.Context) (*Conn, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1) // single in-memory connection, no concurrent writers

	if _, err := db.ExecContext(ctx, "SET preserve_insertion_order = true"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure duckdb: %w", err)
	}
	return &Conn{db: db}, nil
}

// Close drops every registered temp table, then closes the connection.
// Errors dropping individual tables are not fatal — the in-memory database
// is being discarded regardless — but are collected for the caller.
func (c *Conn) Close() error {
	var errs []string
	for _, name := range c.registered {
		if _, err := c.db.Exec(`DROP TABLE IF EXISTS "` + name + `"`); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("engine close: %s", strings.Join(errs, "; "))
	}
	return nil
}

// sqlType maps a schema.DataType to the DuckDB column type used
// when materializing a temp table.
func sqlType(dt schema.DataType) string {
	switch dt {
	case schema.Floating:
		return "DOUBLE"
	case schema.Integer:
		return "BIGINT"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Timestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

// valueSQLType infers a DuckDB column type from the Kind actually observed
// for a column across a table's rows, for tables with no schema.Table
// descriptor driving them (e.g. already-dynamic wide/hourly tables).
func valueSQLType(k clif.Kind) string {
	switch k {
	case clif.KindNumeric:
		return "DOUBLE"
	case clif.KindBoolean:
		return "BOOLEAN"
	case clif.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

// Register materializes a clif.Table as a DuckDB temp table named after
// tempName, typed from the supplied schema.Table when given (nil falls back
// to sniffing each column's Kind from the first non-null value seen).
func (c *Conn) Register(ctx context.Context, tempName string, t *clif.Table, desc *schema.Table) error {
	colTypes := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if desc != nil {
			if cd, ok := desc.Column(col); ok {
				colTypes[i] = sqlType(cd.DataType)
				continue
			}
		}
		colTypes[i] = valueSQLType(sniffKind(t, col))
	}

	var ddl strings.Builder
	fmt.Fprintf(&ddl, `CREATE TEMP TABLE "%s" (`, tempName)
	for i, col := range t.Columns {
		if i > 0 {
			ddl.WriteString(", ")
		}
		fmt.Fprintf(&ddl, `"%s" %s`, col, colTypes[i])
	}
	ddl.WriteString(")")

	if _, err := c.db.ExecContext(ctx, ddl.String()); err != nil {
		return fmt.Errorf("create temp table %s: %w", tempName, err)
	}
	c.registered = append(c.registered, tempName)

	return c.insertRows(ctx, tempName, t)
}

const insertBatchSize = 500

func (c *Conn) insertRows(ctx context.Context, tempName string, t *clif.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = `"` + col + `"`
	}
	colList := strings.Join(cols, ", ")

	for start := 0; start < len(t.Rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		batch := t.Rows[start:end]

		var sb strings.Builder
		fmt.Fprintf(&sb, `INSERT INTO "%s" (%s) VALUES `, tempName, colList)
		args := make([]interface{}, 0, len(batch)*len(t.Columns))
		for i, row := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(")
			for j, col := range t.Columns {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("?")
				args = append(args, toDriverValue(row.Get(col)))
			}
			sb.WriteString(")")
		}

		if _, err := c.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert into %s: %w", tempName, err)
		}
	}
	return nil
}

func toDriverValue(v clif.Value) interface{} {
	switch v.Kind {
	case clif.KindNull:
		return nil
	case clif.KindNumeric:
		return v.Num
	case clif.KindText:
		return v.Str
	case clif.KindTimestamp:
		return v.Time
	case clif.KindBoolean:
		return v.Bool
	default:
		return nil
	}
}

func sniffKind(t *clif.Table, col string) clif.Kind {
	for _, r := range t.Rows {
		if v, ok := r[col]; ok && !v.IsNull() {
			return v.Kind
		}
	}
	return clif.KindText
}

// Query runs sql and materializes the result set into a clif.Table named
// name, inferring column types from the driver's own Go type per cell.
func (c *Conn) Query(ctx context.Context, name, query string, args ...interface{}) (*clif.Table, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := clif.New(name, cols)
	for rows.Next() {
		dest := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(clif.Row, len(cols))
		for i, col := range cols {
			row[col] = fromDriverValue(dest[i])
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

// ColumnsOf returns the column names of an already-created table or view,
// used when a prior step (a PIVOT, most often) produced a data-dependent
// column set that the caller needs to reference by name in a later join.
func (c *Conn) ColumnsOf(ctx context.Context, name string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT * FROM `+QuoteIdent(name)+` LIMIT 0`)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	defer rows.Close()
	return rows.Columns()
}

// Exec runs a statement that returns no rows (CREATE TABLE AS, PIVOT, ...).
func (c *Conn) Exec(ctx context.Context, query string, args ...interface{}) error {
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// Track records an already-created temp/table name so Close drops it too —
// used for tables created via CREATE TABLE ... AS rather than Register.
func (c *Conn) Track(name string) {
	c.registered = append(c.registered, name)
}

func fromDriverValue(v interface{}) clif.Value {
	switch x := v.(type) {
	case nil:
		return clif.Null
	case bool:
		return clif.Boolean(x)
	case float64:
		return clif.Numeric(x)
	case float32:
		return clif.Numeric(float64(x))
	case int64:
		return clif.Numeric(float64(x))
	case int32:
		return clif.Numeric(float64(x))
	case int:
		return clif.Numeric(float64(x))
	case time.Time:
		return clif.Timestamp(x)
	case string:
		return clif.Text(x)
	case []byte:
		return clif.Text(string(x))
	default:
		return clif.Text(fmt.Sprint(x))
	}
}

// QuoteIdent safely quotes a DuckDB identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral safely quotes a DuckDB string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// SanitizeIdent rewrites an arbitrary category value into something safe to
// splice into a column name, per §4.2 step 4's one_hot_encode rule.
func SanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// FormatCombo renders the "{hospitalization_id}_{YYYYMMDDhhmm}" combo_id key
// in Go, for use outside SQL. The builder itself computes combo_id in SQL.
func FormatCombo(hospID string, ts time.Time) string {
	return hospID + "_" + ts.Format("200601021504")
}

// QuoteTime renders a time.Time as a DuckDB TIMESTAMP literal.
func QuoteTime(t time.Time) string {
	return "TIMESTAMP '" + t.UTC().Format("2006-01-02 15:04:05.999999") + "'"
}

// Itoa is a tiny helper so callers building SQL strings don't need to
// import strconv just for this.
func Itoa(n int) string { return strconv.Itoa(n) }
