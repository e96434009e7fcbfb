// Package hourly implements the hourly aggregator: bucketing a wide event
// table into one row per (hospitalization_id, hour) with caller-specified
// per-column reductions, plus an implicit carry-forward for every column the
// caller didn't name.
package hourly

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
)

// Method is one of the eight reduction kinds §4.2 step 4 defines.
type Method string

const (
	Max          Method = "max"
	Min          Method = "min"
	Mean         Method = "mean"
	Median       Method = "median"
	First        Method = "first"
	Last         Method = "last"
	Boolean      Method = "boolean"
	OneHotEncode Method = "one_hot_encode"
)

// Spec is the aggregation_config: which columns get which reduction.
type Spec map[Method][]string

// groupColumns is the fixed set §4.2 step 3 excludes from implicit carry
// forward, since they describe the group itself rather than a measurement.
var groupColumns = map[string]bool{
	"hospitalization_id": true, "event_time_hour": true, "nth_hour": true,
	"hour_bucket": true, "patient_id": true, "day_number": true,
	"first_event_hour": true, "event_time": true,
}

// Options configures one Aggregate call.
type Options struct {
	Logger *zerolog.Logger
}

// Aggregate runs §4.2 steps 1-7 over wide and returns the hourly table.
// wide must carry event_time, hospitalization_id, and day_number (§7 fatal
// condition).
func Aggregate(ctx context.Context, wide *clif.Table, spec Spec, opts Options) (*clif.Table, error) {
	if wide == nil || !wide.HasColumn("event_time") || !wide.HasColumn("hospitalization_id") || !wide.HasColumn("day_number") {
		return nil, fmt.Errorf("hourly: wide input lacks event_time, hospitalization_id, or day_number")
	}
	log := opts.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	if len(wide.Rows) == 0 {
		return emptySchema(spec, wide.Columns), nil
	}

	conn, err := engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("hourly: %w", err)
	}
	defer conn.Close()

	if err := conn.Register(ctx, "h_wide", wide, nil); err != nil {
		return nil, fmt.Errorf("hourly: register wide: %w", err)
	}

	keyedSQL := `
		CREATE TEMP TABLE h_keyed AS
		SELECT w.*,
			date_trunc('hour', w.event_time) AS event_time_hour,
			MIN(date_trunc('hour', w.event_time)) OVER (PARTITION BY w.hospitalization_id) AS first_event_hour
		FROM h_wide w`
	if err := conn.Exec(ctx, keyedSQL); err != nil {
		return nil, fmt.Errorf("hourly: hour keying: %w", err)
	}
	conn.Track("h_keyed")

	nthSQL := `
		CREATE TEMP TABLE h_nth AS
		SELECT *,
			CAST((epoch(event_time_hour) - epoch(first_event_hour)) / 3600 AS INTEGER) AS nth_hour,
			CAST(extract('hour' FROM event_time_hour) AS INTEGER) AS hour_bucket
		FROM h_keyed`
	if err := conn.Exec(ctx, nthSQL); err != nil {
		return nil, fmt.Errorf("hourly: nth_hour: %w", err)
	}
	conn.Track("h_nth")

	// Validate and filter the caller's spec: unknown columns are logged once
	// and skipped (§7 Missing-column); unknown methods likewise.
	named := map[string]bool{}
	cleanSpec := Spec{}
	for method, cols := range spec {
		if !validMethod(method) {
			log.Warn().Str("method", string(method)).Msg("hourly: unknown method, skipped")
			continue
		}
		var kept []string
		for _, c := range cols {
			if !wide.HasColumn(c) {
				log.Warn().Str("column", c).Msg("hourly: unknown source column, skipped")
				continue
			}
			kept = append(kept, c)
			named[c] = true
		}
		if len(kept) > 0 {
			cleanSpec[method] = kept
		}
	}

	// Implicit carry-forward columns (§4.2 step 3): everything left over.
	var implicit []string
	for _, c := range wide.Columns {
		if groupColumns[c] || named[c] {
			continue
		}
		implicit = append(implicit, c)
	}
	sort.Strings(implicit)

	var selectExprs []string
	for _, method := range []Method{Max, Min, Mean, Median, First, Last, Boolean} {
		for _, col := range cleanSpec[method] {
			selectExprs = append(selectExprs, reductionExpr(method, col, col+"_"+string(method)))
		}
	}
	for _, col := range implicit {
		selectExprs = append(selectExprs, reductionExpr(First, col, col+"_c"))
	}

	// one_hot_encode needs the global distinct-value set before the main
	// query, so each group's row carries every possible column (§4.2 step 7).
	var oneHotCols []string
	for _, col := range cleanSpec[OneHotEncode] {
		values, err := distinctValues(ctx, conn, "h_nth", col)
		if err != nil {
			return nil, fmt.Errorf("hourly: distinct values for %s: %w", col, err)
		}
		if len(values) == 0 {
			log.Warn().Str("column", col).Msg("hourly: one_hot_encode column has no non-null values")
			continue
		}
		for _, v := range values {
			outCol := col + "_" + engine.SanitizeIdent(v)
			oneHotCols = append(oneHotCols, outCol)
			selectExprs = append(selectExprs, fmt.Sprintf(
				"MAX(CASE WHEN %s = %s THEN 1 ELSE 0 END) AS %s",
				engine.QuoteIdent(col), engine.QuoteLiteral(v), engine.QuoteIdent(outCol)))
		}
	}

	groupSelect := []string{
		"hospitalization_id", "event_time_hour", "nth_hour", "hour_bucket",
		reductionExpr(First, "patient_id", "patient_id"),
		reductionExpr(First, "day_number", "day_number"),
	}
	groupSelect = append(groupSelect, selectExprs...)

	finalSQL := fmt.Sprintf(`
		SELECT %s
		FROM h_nth
		GROUP BY hospitalization_id, event_time_hour, nth_hour, hour_bucket
		ORDER BY hospitalization_id, nth_hour`, strings.Join(groupSelect, ", "))

	result, err := conn.Query(ctx, "hourly", finalSQL)
	if err != nil {
		return nil, fmt.Errorf("hourly: aggregation query: %w", err)
	}

	_ = oneHotCols // every column is already present on every row via the single grouped query
	return result, nil
}

func validMethod(m Method) bool {
	switch m {
	case Max, Min, Mean, Median, First, Last, Boolean, OneHotEncode:
		return true
	default:
		return false
	}
}

// reductionExpr renders the SQL aggregate expression for one (method,
// column) pair, aliased to outName.
func reductionExpr(method Method, col, outName string) string {
	c := engine.QuoteIdent(col)
	o := engine.QuoteIdent(outName)
	switch method {
	case Max:
		return fmt.Sprintf("MAX(%s) AS %s", c, o)
	case Min:
		return fmt.Sprintf("MIN(%s) AS %s", c, o)
	case Mean:
		return fmt.Sprintf("AVG(%s) AS %s", c, o)
	case Median:
		return fmt.Sprintf("MEDIAN(%s) AS %s", c, o)
	case First:
		return fmt.Sprintf("FIRST(%s ORDER BY event_time) FILTER (WHERE %s IS NOT NULL) AS %s", c, c, o)
	case Last:
		return fmt.Sprintf("LAST(%s ORDER BY event_time) FILTER (WHERE %s IS NOT NULL) AS %s", c, c, o)
	case Boolean:
		return fmt.Sprintf("CASE WHEN COUNT(%s) > 0 THEN 1 ELSE 0 END AS %s", c, o)
	default:
		return fmt.Sprintf("NULL AS %s", o)
	}
}

func distinctValues(ctx context.Context, conn *engine.Conn, table, col string) ([]string, error) {
	t, err := conn.Query(ctx, "distinct", fmt.Sprintf(
		"SELECT DISTINCT %s AS v FROM %s WHERE %s IS NOT NULL ORDER BY v",
		engine.QuoteIdent(col), table, engine.QuoteIdent(col)))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, row := range t.Rows {
		v := row.Get("v")
		if !v.IsNull() {
			out = append(out, v.AsString())
		}
	}
	return out, nil
}

// emptySchema returns a zero-row table carrying the expected grouping
// columns plus whatever named/implicit columns the aggregation config
// would have produced, per §4.2's "empty input yields an empty result with the
// expected column schema."
func emptySchema(spec Spec, wideCols []string) *clif.Table {
	cols := []string{"hospitalization_id", "event_time_hour", "nth_hour", "hour_bucket", "patient_id", "day_number"}
	named := map[string]bool{}
	for method, names := range spec {
		for _, n := range names {
			named[n] = true
		}
		if method == OneHotEncode {
			continue
		}
		for _, n := range names {
			cols = append(cols, n+"_"+string(method))
		}
	}
	var implicit []string
	for _, c := range wideCols {
		if !groupColumns[c] && !named[c] {
			implicit = append(implicit, c+"_c")
		}
	}
	sort.Strings(implicit)
	return clif.New("hourly", append(cols, implicit...))
}
