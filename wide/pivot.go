package wide

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
	"clifgo/schema"
)

// buildPivot implements §4.1 step 5 for one pivotable source: filters by
// category, projects (combo_id, category, value) with duplicates removed,
// then pivots with first-wins aggregation. An empty alias with a nil error
// means Pivot-empty (§7): the source contributed no rows after filtering,
// which is not fatal.
func buildPivot(ctx context.Context, conn *engine.Conn, sourceName, tsCol string, categoryFilter []string, log *zerolog.Logger) (string, []string, error) {
	categoryCol := schema.CategoryColumn(sourceName)
	valueCol := schema.ValueColumn(sourceName)
	srcTable := "w_" + sourceName
	filteredName := "filtered_" + sourceName

	where := fmt.Sprintf("%s IS NOT NULL AND %s IS NOT NULL", engine.QuoteIdent(tsCol), engine.QuoteIdent(valueCol))
	if len(categoryFilter) > 0 {
		where += " AND " + engine.QuoteIdent(categoryCol) + " IN (" + quoteList(categoryFilter) + ")"
	}

	filterSQL := fmt.Sprintf(`
		CREATE TEMP TABLE %s AS
		SELECT DISTINCT
			hospitalization_id || '_' || strftime(date_trunc('minute', %s), '%%Y%%m%%d%%H%%M') AS combo_id,
			%s AS category,
			%s AS value
		FROM %s
		WHERE %s`,
		filteredName, engine.QuoteIdent(tsCol), engine.QuoteIdent(categoryCol), engine.QuoteIdent(valueCol), srcTable, where)

	if err := conn.Exec(ctx, filterSQL); err != nil {
		return "", nil, fmt.Errorf("filter %s: %w", sourceName, err)
	}
	conn.Track(filteredName)

	count, err := rowCount(ctx, conn, filteredName)
	if err != nil {
		return "", nil, err
	}
	if count == 0 {
		log.Warn().Str("table", sourceName).Msg("wide: pivot-empty, source omitted")
		return "", nil, nil
	}

	pivotName := "pivot_" + sourceName
	pivotSQL := fmt.Sprintf(`
		CREATE TEMP TABLE %s AS
		PIVOT (SELECT combo_id, category, value FROM %s)
		ON category
		USING first(value)
		GROUP BY combo_id`, pivotName, filteredName)
	if err := conn.Exec(ctx, pivotSQL); err != nil {
		return "", nil, fmt.Errorf("pivot %s: %w", sourceName, err)
	}
	conn.Track(pivotName)

	cols, err := conn.ColumnsOf(ctx, pivotName)
	if err != nil {
		return "", nil, err
	}
	return pivotName, cols, nil
}

// buildAssessmentAux carries categorical_value/text_value through
// unpivoted, first-wins on combo_id, per the resolved Open Question in
// DESIGN.md: patient_assessments pivots assessment_value numerically and
// exposes the non-numeric fields as plain auxiliary columns rather than
// per-category pivots.
func buildAssessmentAux(ctx context.Context, conn *engine.Conn, src *clif.Table) (string, []string, error) {
	if !src.HasColumn("categorical_value") && !src.HasColumn("text_value") {
		return "", nil, nil
	}
	tsCol, ok := resolveTimestampColumn(src, "patient_assessments")
	if !ok {
		return "", nil, nil
	}

	var cols []string
	if src.HasColumn("categorical_value") {
		cols = append(cols, "categorical_value AS assessment_categorical_value")
	}
	if src.HasColumn("text_value") {
		cols = append(cols, "text_value AS assessment_text_value")
	}

	name := "assessment_aux"
	sqlText := fmt.Sprintf(`
		CREATE TEMP TABLE %s AS
		SELECT DISTINCT ON (combo_id)
			hospitalization_id || '_' || strftime(date_trunc('minute', %s), '%%Y%%m%%d%%H%%M') AS combo_id,
			%s
		FROM w_patient_assessments
		WHERE %s IS NOT NULL AND (categorical_value IS NOT NULL OR text_value IS NOT NULL)
		ORDER BY combo_id`, name, engine.QuoteIdent(tsCol), joinSelect(cols), engine.QuoteIdent(tsCol))

	if err := conn.Exec(ctx, sqlText); err != nil {
		return "", nil, fmt.Errorf("assessment aux: %w", err)
	}
	conn.Track(name)

	outCols, err := conn.ColumnsOf(ctx, name)
	if err != nil {
		return "", nil, err
	}
	return name, outCols, nil
}

func rowCount(ctx context.Context, conn *engine.Conn, table string) (int, error) {
	t, err := conn.Query(ctx, "count", fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s`, table))
	if err != nil {
		return 0, err
	}
	if len(t.Rows) == 0 {
		return 0, nil
	}
	n, _ := t.Rows[0].Get("n").AsFloat()
	return int(n), nil
}

func quoteList(vals []string) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ", "
		}
		out += engine.QuoteLiteral(v)
	}
	return out
}

func joinSelect(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
