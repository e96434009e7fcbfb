// Package wide implements the wide-dataset builder: unifying event
// timestamps across a hospitalization's base tables and selected optional
// event tables into one long-form table, one row per (hospitalization_id,
// event_time), with pivoted category columns.
package wide

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
	"clifgo/schema"
)

// Options configures one Build call, per §4.1 Inputs.
type Options struct {
	OptionalTables   []string
	CategoryFilters  map[string][]string
	Cohort           Cohort
	BaseTableColumns map[string][]string
	Logger           *zerolog.Logger
}

// Input bundles the loaded tables a Build call consumes.
type Input struct {
	Patient         *clif.Table
	Hospitalization *clif.Table
	ADT             *clif.Table
	// Sources holds whichever of vitals, labs, medication_admin_continuous,
	// patient_assessments, respiratory_support the caller has loaded.
	// Missing-but-selected sources are a Missing-source condition (§7),
	// logged and skipped rather than fatal.
	Sources map[string]*clif.Table
}

func want(opts Options, table string) bool {
	for _, t := range opts.OptionalTables {
		if t == table {
			return true
		}
	}
	return false
}

// Build runs the algorithm of §4.1 steps 1-10 and returns the wide event
// table. patient and hospitalization are required; their absence is fatal
// per §7.
func Build(ctx context.Context, in Input, opts Options) (*clif.Table, error) {
	if in.Patient == nil || len(in.Patient.Rows) == 0 {
		return nil, fmt.Errorf("wide: patient table is required")
	}
	if in.Hospitalization == nil || len(in.Hospitalization.Rows) == 0 {
		return nil, fmt.Errorf("wide: hospitalization table is required")
	}
	log := opts.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	// Step 1: cohort resolution.
	ids := opts.Cohort.resolve(in.Hospitalization)
	idm := idSet(ids)
	hosp := filterByHospID(in.Hospitalization, idm)
	adt := filterByHospID(in.ADT, idm)
	sources := make(map[string]*clif.Table, len(in.Sources))
	for name, t := range in.Sources {
		sources[name] = filterByHospID(t, idm)
	}

	conn, err := engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("wide: %w", err)
	}
	defer conn.Close()

	if err := conn.Register(ctx, "w_patient", in.Patient, schema.Patient()); err != nil {
		return nil, fmt.Errorf("wide: register patient: %w", err)
	}
	if err := conn.Register(ctx, "w_hospitalization", hosp, schema.Hospitalization()); err != nil {
		return nil, fmt.Errorf("wide: register hospitalization: %w", err)
	}

	adtPresent := adt != nil && len(adt.Rows) > 0
	if adtPresent {
		if err := conn.Register(ctx, "w_adt", adt, schema.ADT()); err != nil {
			return nil, fmt.Errorf("wide: register adt: %w", err)
		}
	} else {
		log.Warn().Msg("wide: no location transfer rows for cohort")
	}

	// Resolve each requested optional source: present, has rows, has a
	// resolvable timestamp column. Anything else is logged and excluded.
	active := map[string]*clif.Table{}
	tsCols := map[string]string{}
	for _, name := range schema.OptionalTables {
		if !want(opts, name) {
			continue
		}
		t, ok := sources[name]
		if !ok || t == nil || len(t.Rows) == 0 {
			log.Warn().Str("table", name).Msg("wide: missing-source, skipped")
			continue
		}
		col, ok := resolveTimestampColumn(t, name)
		if !ok {
			log.Warn().Str("table", name).Msg("wide: timestamp-unresolved, source excluded")
			continue
		}
		desc := schema.ByName(name)
		if err := conn.Register(ctx, "w_"+name, t, desc); err != nil {
			return nil, fmt.Errorf("wide: register %s: %w", name, err)
		}
		active[name] = t
		tsCols[name] = col
	}

	// Step 3: event-time union.
	var unionParts []string
	if adtPresent {
		unionParts = append(unionParts, `SELECT hospitalization_id, date_trunc('minute', in_dttm) AS event_time FROM w_adt WHERE in_dttm IS NOT NULL`)
	}
	for _, name := range schema.PivotSources {
		if _, ok := active[name]; !ok {
			continue
		}
		col := tsCols[name]
		unionParts = append(unionParts, fmt.Sprintf(
			`SELECT hospitalization_id, date_trunc('minute', %s) AS event_time FROM w_%s WHERE %s IS NOT NULL`,
			engine.QuoteIdent(col), name, engine.QuoteIdent(col)))
	}
	if respTable, ok := active["respiratory_support"]; ok && respTable != nil {
		col := tsCols["respiratory_support"]
		unionParts = append(unionParts, fmt.Sprintf(
			`SELECT hospitalization_id, date_trunc('minute', %s) AS event_time FROM w_respiratory_support WHERE %s IS NOT NULL`,
			engine.QuoteIdent(col), engine.QuoteIdent(col)))
	}
	if len(unionParts) == 0 {
		return nil, fmt.Errorf("wide: no source contributed an event timestamp for this cohort")
	}

	eventUnionSQL := fmt.Sprintf(`
		CREATE TEMP TABLE event_union AS
		SELECT DISTINCT hospitalization_id, event_time,
			hospitalization_id || '_' || strftime(event_time, '%%Y%%m%%d%%H%%M') AS combo_id
		FROM (%s)`, strings.Join(unionParts, " UNION ALL "))
	if err := conn.Exec(ctx, eventUnionSQL); err != nil {
		return nil, fmt.Errorf("wide: event union: %w", err)
	}
	conn.Track("event_union")

	// Step 2: base join, with base_table_columns projection.
	baseSelect := baseColumnSelect(in.Patient, hosp, opts.BaseTableColumns)
	baseSQL := fmt.Sprintf(`
		CREATE TEMP TABLE base_cohort AS
		SELECT %s
		FROM w_hospitalization h
		JOIN w_patient p ON p.patient_id = h.patient_id`, baseSelect)
	if err := conn.Exec(ctx, baseSQL); err != nil {
		return nil, fmt.Errorf("wide: base join: %w", err)
	}
	conn.Track("base_cohort")

	// Step 6: expansion.
	expandedSQL := `
		CREATE TEMP TABLE expanded AS
		SELECT b.*, u.event_time AS event_time, u.combo_id AS combo_id
		FROM base_cohort b
		LEFT JOIN event_union u ON u.hospitalization_id = b.hospitalization_id`
	if err := conn.Exec(ctx, expandedSQL); err != nil {
		return nil, fmt.Errorf("wide: expansion: %w", err)
	}
	conn.Track("expanded")

	joinClauses := []string{"expanded e"}
	selectCols := []string{"e.*"}

	// Step 7a: location transfer attribute join, first-wins on combo_id.
	if adtPresent {
		adtCols, err := conn.ColumnsOf(ctx, "w_adt")
		if err != nil {
			return nil, fmt.Errorf("wide: adt columns: %w", err)
		}
		payload := excludeCols(adtCols, "hospitalization_id")
		viewSQL := fmt.Sprintf(`
			CREATE TEMP TABLE adt_view AS
			SELECT DISTINCT ON (combo_id) %s, hospitalization_id || '_' || strftime(date_trunc('minute', in_dttm), '%%Y%%m%%d%%H%%M') AS combo_id
			FROM w_adt
			WHERE in_dttm IS NOT NULL
			ORDER BY combo_id`, prefixCols(payload, ""))
		if err := conn.Exec(ctx, viewSQL); err != nil {
			return nil, fmt.Errorf("wide: adt view: %w", err)
		}
		conn.Track("adt_view")
		joinClauses = append(joinClauses, "LEFT JOIN adt_view av ON av.combo_id = e.combo_id")
		selectCols = append(selectCols, qualifyExclude("av", payload, "combo_id")...)
	}

	// Step 5 + 7b: per-source pivots.
	requestedGhosts := map[string]bool{}
	for _, name := range schema.PivotSources {
		if _, ok := active[name]; !ok {
			// Filters naming a source the caller never selected via
			// optional_tables are silently ignored (§4.1 step 9); only a
			// selected-but-unresolved source produces ghost columns.
			if want(opts, name) {
				for _, cat := range opts.CategoryFilters[name] {
					requestedGhosts[cat] = true
				}
			}
			continue
		}
		pivotAlias, cols, err := buildPivot(ctx, conn, name, tsCols[name], opts.CategoryFilters[name], log)
		if err != nil {
			return nil, fmt.Errorf("wide: pivot %s: %w", name, err)
		}
		if pivotAlias == "" {
			for _, cat := range opts.CategoryFilters[name] {
				requestedGhosts[cat] = true
			}
			continue
		}
		joinClauses = append(joinClauses, fmt.Sprintf("LEFT JOIN %s ON %s.combo_id = e.combo_id", pivotAlias, pivotAlias))
		selectCols = append(selectCols, qualifyExclude(pivotAlias, cols, "combo_id")...)

		if name == "patient_assessments" {
			auxAlias, auxCols, err := buildAssessmentAux(ctx, conn, active[name])
			if err != nil {
				return nil, fmt.Errorf("wide: assessment aux: %w", err)
			}
			if auxAlias != "" {
				joinClauses = append(joinClauses, fmt.Sprintf("LEFT JOIN %s ON %s.combo_id = e.combo_id", auxAlias, auxAlias))
				selectCols = append(selectCols, qualifyExclude(auxAlias, auxCols, "combo_id")...)
			}
		}

		present := map[string]bool{}
		for _, c := range cols {
			present[c] = true
		}
		for _, cat := range opts.CategoryFilters[name] {
			if !present[cat] {
				requestedGhosts[cat] = true
			}
		}
	}

	// Step 7c: respiratory_support, never pivoted, first-wins on combo_id.
	if respTable, ok := active["respiratory_support"]; ok && respTable != nil {
		col := tsCols["respiratory_support"]
		cols, err := conn.ColumnsOf(ctx, "w_respiratory_support")
		if err != nil {
			return nil, fmt.Errorf("wide: respiratory columns: %w", err)
		}
		payload := excludeCols(cols, "hospitalization_id")
		viewSQL := fmt.Sprintf(`
			CREATE TEMP TABLE resp_view AS
			SELECT DISTINCT ON (combo_id) %s, hospitalization_id || '_' || strftime(date_trunc('minute', %s), '%%Y%%m%%d%%H%%M') AS combo_id
			FROM w_respiratory_support
			WHERE %s IS NOT NULL
			ORDER BY combo_id`, prefixCols(payload, ""), engine.QuoteIdent(col), engine.QuoteIdent(col))
		if err := conn.Exec(ctx, viewSQL); err != nil {
			return nil, fmt.Errorf("wide: respiratory view: %w", err)
		}
		conn.Track("resp_view")
		joinClauses = append(joinClauses, "LEFT JOIN resp_view rv ON rv.combo_id = e.combo_id")
		selectCols = append(selectCols, qualifyExclude("rv", payload, "combo_id")...)
	}

	// Step 8: day numbering.
	selectCols = append(selectCols,
		`DENSE_RANK() OVER (PARTITION BY e.hospitalization_id ORDER BY date_trunc('day', e.event_time)) AS day_number`,
		`e.hospitalization_id || '_day_' || DENSE_RANK() OVER (PARTITION BY e.hospitalization_id ORDER BY date_trunc('day', e.event_time)) AS hosp_id_day_key`,
	)

	finalSQL := fmt.Sprintf("SELECT %s FROM %s ORDER BY e.hospitalization_id, e.event_time",
		strings.Join(selectCols, ", "), strings.Join(joinClauses, " "))

	result, err := conn.Query(ctx, "wide_event", finalSQL)
	if err != nil {
		return nil, fmt.Errorf("wide: final join: %w", err)
	}

	// Step 10: drop internal helper columns.
	result.RemoveColumn("combo_id")

	// Step 9: ghost columns.
	for cat := range requestedGhosts {
		if !result.HasColumn(cat) {
			result.AddColumn(cat)
		}
	}

	return result, nil
}

// resolveTimestampColumn applies §4.1 step 3's fallback order for a table,
// returning the first candidate actually present in t's columns.
func resolveTimestampColumn(t *clif.Table, tableName string) (string, bool) {
	for _, cand := range schema.TimestampCandidates(tableName) {
		if t.HasColumn(cand) {
			return cand, true
		}
	}
	return "", false
}

func excludeCols(cols []string, drop ...string) []string {
	dropSet := map[string]bool{}
	for _, d := range drop {
		dropSet[d] = true
	}
	var out []string
	for _, c := range cols {
		if !dropSet[c] {
			out = append(out, c)
		}
	}
	return out
}

func prefixCols(cols []string, prefix string) string {
	var parts []string
	for _, c := range cols {
		if prefix == "" {
			parts = append(parts, engine.QuoteIdent(c))
		} else {
			parts = append(parts, prefix+"."+engine.QuoteIdent(c))
		}
	}
	return strings.Join(parts, ", ")
}

func qualifyExclude(alias string, cols []string, drop string) []string {
	var out []string
	for _, c := range cols {
		if c == drop {
			continue
		}
		out = append(out, alias+"."+engine.QuoteIdent(c)+" AS "+engine.QuoteIdent(c))
	}
	return out
}

// baseColumnSelect builds the projection list for base_cohort, honoring
// base_table_columns while always keeping identity columns (§4.1 Inputs).
func baseColumnSelect(patient, hosp *clif.Table, subset map[string][]string) string {
	patientCols := columnsOrSubset(patient.Columns, subset["patient"], []string{"patient_id"})
	hospCols := columnsOrSubset(hosp.Columns, subset["hospitalization"], []string{"hospitalization_id", "patient_id"})

	var parts []string
	for _, c := range hospCols {
		parts = append(parts, "h."+engine.QuoteIdent(c)+" AS "+engine.QuoteIdent(c))
	}
	for _, c := range patientCols {
		if c == "patient_id" {
			continue // already carried from hospitalization
		}
		parts = append(parts, "p."+engine.QuoteIdent(c)+" AS "+engine.QuoteIdent(c))
	}
	return strings.Join(parts, ", ")
}

func columnsOrSubset(all []string, subset []string, identity []string) []string {
	if len(subset) == 0 {
		return all
	}
	allSet := map[string]bool{}
	for _, c := range all {
		allSet[c] = true
	}
	keep := map[string]bool{}
	var out []string
	for _, id := range identity {
		if allSet[id] && !keep[id] {
			keep[id] = true
			out = append(out, id)
		}
	}
	for _, c := range subset {
		if !allSet[c] {
			continue // missing-column: dropped silently; nothing logs it
		}
		if !keep[c] {
			keep[c] = true
			out = append(out, c)
		}
	}
	return out
}
