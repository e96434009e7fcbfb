// Package output persists a wide or hourly result table to disk. Both
// tables have data-dependent schemas, so writing goes through the same
// embedded DuckDB engine used to build them, on a fresh connection that
// registers the table and runs COPY ... TO, rather than
// parquet-go's generic, statically-typed writer, which needs a fixed Go
// struct per file — something the wide and hourly outputs don't have.
package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"clifgo/clif"
	"clifgo/engine"
)

// Format is the on-disk encoding for a persisted result table.
type Format string

const (
	Parquet Format = "parquet"
	CSV     Format = "csv"
)

// Write persists t to path in the given format, per §6's
// "{output_filename}.{parquet|csv}" contract.
func Write(ctx context.Context, t *clif.Table, path string, format Format) error {
	conn, err := engine.Open(ctx)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer conn.Close()

	if err := conn.Register(ctx, "out_result", t, nil); err != nil {
		return fmt.Errorf("output: register result: %w", err)
	}

	var opts string
	switch format {
	case CSV:
		opts = "(FORMAT CSV, HEADER)"
	default:
		opts = "(FORMAT PARQUET)"
	}

	copySQL := fmt.Sprintf(`COPY (SELECT %s FROM out_result) TO %s %s`,
		quoteOrderedColumns(t.Columns), engine.QuoteLiteral(path), opts)
	if err := conn.Exec(ctx, copySQL); err != nil {
		return fmt.Errorf("output: copy to %s: %w", path, err)
	}
	return nil
}

// DefaultFilename generates a {output_filename}.{parquet|csv} base name for
// callers that don't supply one explicitly, per §6's persistence contract.
// stem identifies the artifact ("wide_dataset", "hourly_dataset"); a random
// UUID stands in for the original implementation's run timestamp, since two
// runs started in the same second would otherwise collide.
func DefaultFilename(stem string, format Format) string {
	ext := "parquet"
	if format == CSV {
		ext = "csv"
	}
	return fmt.Sprintf("%s_%s.%s", stem, uuid.New().String(), ext)
}

func quoteOrderedColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = engine.QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
