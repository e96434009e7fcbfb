package hourly

import (
	"context"
	"testing"
	"time"

	"clifgo/clif"
)

func wideRow(hospID string, at time.Time, day int, extra clif.Row) clif.Row {
	row := clif.Row{
		"hospitalization_id": clif.Text(hospID),
		"patient_id":          clif.Text("P1"),
		"event_time":          clif.Timestamp(at),
		"day_number":          clif.Numeric(float64(day)),
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

// TestAggregateBooleanReduction covers S4: a boolean-reduced column is 1 for
// any hour with at least one non-null observation, 0 otherwise.
func TestAggregateBooleanReduction(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wide := clif.New("wide", []string{"hospitalization_id", "patient_id", "event_time", "day_number", "sbt_screen"})
	wide.Rows = []clif.Row{
		wideRow("H1", base, 1, clif.Row{"sbt_screen": clif.Numeric(1)}),
		wideRow("H1", base.Add(30*time.Minute), 1, clif.Row{"sbt_screen": clif.Null}),
		wideRow("H1", base.Add(time.Hour), 1, clif.Row{"sbt_screen": clif.Null}),
	}

	out, err := Aggregate(ctx, wide, Spec{Boolean: {"sbt_screen"}}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 hourly rows, got %d", len(out.Rows))
	}
	first := out.Rows[0]
	v, ok := first.Get("sbt_screen_boolean").AsFloat()
	if !ok || v != 1 {
		t.Errorf("first hour should have sbt_screen_boolean=1, got %v", first.Get("sbt_screen_boolean"))
	}
	second := out.Rows[1]
	v, ok = second.Get("sbt_screen_boolean").AsFloat()
	if !ok || v != 0 {
		t.Errorf("second hour should have sbt_screen_boolean=0, got %v", second.Get("sbt_screen_boolean"))
	}
}

// TestAggregateNthHourOriginAlignment covers S5 and invariant 3: nth_hour
// starts at 0 for a hospitalization's first hour and is strictly
// non-decreasing thereafter.
func TestAggregateNthHourOriginAlignment(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wide := clif.New("wide", []string{"hospitalization_id", "patient_id", "event_time", "day_number", "heart_rate"})
	wide.Rows = []clif.Row{
		wideRow("H1", base, 1, clif.Row{"heart_rate": clif.Numeric(80)}),
		wideRow("H1", base.Add(2*time.Hour), 1, clif.Row{"heart_rate": clif.Numeric(85)}),
		wideRow("H1", base.Add(5*time.Hour), 1, clif.Row{"heart_rate": clif.Numeric(90)}),
	}

	out, err := Aggregate(ctx, wide, Spec{Max: {"heart_rate"}}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(out.Rows) != 3 {
		t.Fatalf("expected 3 hourly rows, got %d", len(out.Rows))
	}
	wantNth := []float64{0, 2, 5}
	prev := -1.0
	for i, row := range out.Rows {
		nth, ok := row.Get("nth_hour").AsFloat()
		if !ok || nth != wantNth[i] {
			t.Errorf("row %d: nth_hour = %v, want %v", i, row.Get("nth_hour"), wantNth[i])
		}
		if nth < prev {
			t.Errorf("nth_hour must be non-decreasing, got %v after %v", nth, prev)
		}
		prev = nth
	}
}

// TestAggregateImplicitCarryForward covers the _c suffix for columns the
// caller didn't name in the aggregation spec map.
func TestAggregateImplicitCarryForward(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wide := clif.New("wide", []string{"hospitalization_id", "patient_id", "event_time", "day_number", "device_category"})
	wide.Rows = []clif.Row{
		wideRow("H1", base, 1, clif.Row{"device_category": clif.Text("vent")}),
	}

	out, err := Aggregate(ctx, wide, Spec{}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !out.HasColumn("device_category_c") {
		t.Fatalf("expected implicit carry-forward column device_category_c, got columns %v", out.Columns)
	}
	if got := out.Rows[0].Get("device_category_c").AsString(); got != "vent" {
		t.Errorf("device_category_c = %q, want vent", got)
	}
}

// TestAggregateOneHotEncode covers the one-hot column set: one output column
// per distinct non-null value of the source column across the whole input.
func TestAggregateOneHotEncode(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wide := clif.New("wide", []string{"hospitalization_id", "patient_id", "event_time", "day_number", "device_category"})
	wide.Rows = []clif.Row{
		wideRow("H1", base, 1, clif.Row{"device_category": clif.Text("vent")}),
		wideRow("H1", base.Add(time.Hour), 1, clif.Row{"device_category": clif.Text("nc")}),
	}

	out, err := Aggregate(ctx, wide, Spec{OneHotEncode: {"device_category"}}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	oneHotCount := 0
	for _, c := range out.Columns {
		if len(c) > len("device_category_") && c[:len("device_category_")] == "device_category_" {
			oneHotCount++
		}
	}
	if oneHotCount != 2 {
		t.Fatalf("expected 2 one-hot columns for 2 distinct values, got %d (columns %v)", oneHotCount, out.Columns)
	}
}

// TestAggregateEmptyInput covers the empty-input contract: a zero-row wide
// table yields a zero-row result with the expected schema, not an error.
func TestAggregateEmptyInput(t *testing.T) {
	ctx := context.Background()
	wide := clif.New("wide", []string{"hospitalization_id", "patient_id", "event_time", "day_number", "heart_rate"})

	out, err := Aggregate(ctx, wide, Spec{Max: {"heart_rate"}}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(out.Rows) != 0 {
		t.Fatalf("expected 0 rows for empty input, got %d", len(out.Rows))
	}
	if !out.HasColumn("heart_rate_max") {
		t.Errorf("empty result should still carry the expected column schema, got %v", out.Columns)
	}
}

// TestAggregateRequiresGroupingColumns covers the fatal condition when the
// wide input lacks event_time, hospitalization_id, or day_number.
func TestAggregateRequiresGroupingColumns(t *testing.T) {
	ctx := context.Background()
	bad := clif.New("wide", []string{"hospitalization_id"})
	if _, err := Aggregate(ctx, bad, Spec{}, Options{}); err == nil {
		t.Fatalf("expected an error when required grouping columns are missing")
	}
}
