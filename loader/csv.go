package loader

import (
	"context"
	"fmt"

	"clifgo/clif"
	"clifgo/engine"
)

// readCSVRows loads a CSV source through the same engine that later serves
// the builder and aggregator, so both file formats share one path from
// "rows on disk" to clif.Value — DuckDB's read_csv_auto handles type
// sniffing and quoting uniformly rather than a second hand-rolled parser.
func readCSVRows(ctx context.Context, path string) (*clif.Table, error) {
	conn, err := engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	defer conn.Close()

	query := fmt.Sprintf(`SELECT * FROM read_csv_auto(%s, SAMPLE_SIZE=-1)`, engine.QuoteLiteral(path))
	return conn.Query(ctx, "csv_source", query)
}
