package vaso

import (
	"context"
	"testing"
	"time"

	"clifgo/clif"
	"clifgo/engine"
)

func med(hospID string, at time.Time, category string, dose float64, unit string) clif.Row {
	return clif.Row{
		"hospitalization_id": clif.Text(hospID),
		"admin_dttm":          clif.Timestamp(at),
		"med_category":        clif.Text(category),
		"med_dose":            clif.Numeric(dose),
		"med_dose_unit":       clif.Text(unit),
	}
}

// TestConvertMissingWeight covers S6: a norepinephrine row with no weight
// observation for its hospitalization converts to a null dose with the
// marker set false.
func TestConvertMissingWeight(t *testing.T) {
	ctx := context.Background()
	conn, err := engine.Open(ctx)
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	defer conn.Close()

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	medTable := clif.New("medication_admin_continuous",
		[]string{"hospitalization_id", "admin_dttm", "med_category", "med_dose", "med_dose_unit"})
	medTable.Rows = []clif.Row{med("H1", at, "norepinephrine", 5, "mcg/min")}

	vitals := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})

	out, err := Convert(ctx, conn, medTable, vitals, Options{TargetUnit: "mcg/kg/min"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.Rows))
	}
	row := out.Rows[0]
	if !row.Get("med_dose").IsNull() {
		t.Fatalf("dose should be null with no weight, got %v", row.Get("med_dose"))
	}
	if applied, _ := row.Get("unit_conversion_applied").AsFloat(); applied != 0 {
		t.Fatalf("unit_conversion_applied should be false, got %v", row.Get("unit_conversion_applied"))
	}
}

// TestConvertWithWeight covers S6's sibling case: with a weight measurement
// present, dose = raw_dose / weight_kg.
func TestConvertWithWeight(t *testing.T) {
	ctx := context.Background()
	conn, err := engine.Open(ctx)
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	defer conn.Close()

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	medTable := clif.New("medication_admin_continuous",
		[]string{"hospitalization_id", "admin_dttm", "med_category", "med_dose", "med_dose_unit"})
	medTable.Rows = []clif.Row{med("H1", at, "norepinephrine", 5, "mcg/min")}

	vitals := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})
	vitals.Rows = []clif.Row{{
		"hospitalization_id": clif.Text("H1"),
		"recorded_dttm":       clif.Timestamp(at.Add(-time.Hour)),
		"vital_category":      clif.Text("weight_kg"),
		"vital_value":         clif.Numeric(100),
	}}

	out, err := Convert(ctx, conn, medTable, vitals, Options{TargetUnit: "mcg/kg/min"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	row := out.Rows[0]
	dose, ok := row.Get("med_dose").AsFloat()
	if !ok || dose != 0.05 {
		t.Fatalf("expected dose 5/100=0.05, got %v (ok=%v)", dose, ok)
	}
	if applied, _ := row.Get("unit_conversion_applied").AsFloat(); applied != 1 {
		t.Fatalf("unit_conversion_applied should be true")
	}
}

// TestConvertIdempotent covers invariant 6: target unit equal to source
// unit leaves dose unchanged and marks the row converted.
func TestConvertIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := engine.Open(ctx)
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	defer conn.Close()

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	medTable := clif.New("medication_admin_continuous",
		[]string{"hospitalization_id", "admin_dttm", "med_category", "med_dose", "med_dose_unit"})
	medTable.Rows = []clif.Row{med("H1", at, "epinephrine", 3, "mcg/kg/min")}
	vitals := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})

	out, err := Convert(ctx, conn, medTable, vitals, Options{TargetUnit: "mcg/kg/min"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	row := out.Rows[0]
	dose, _ := row.Get("med_dose").AsFloat()
	if dose != 3 {
		t.Fatalf("idempotent conversion should leave dose unchanged, got %v", dose)
	}
	if applied, _ := row.Get("unit_conversion_applied").AsFloat(); applied != 1 {
		t.Fatalf("idempotent conversion should still mark unit_conversion_applied true")
	}
}

// TestConvertNonVasopressorPassesThrough ensures categories outside the
// closed vasopressor set are untouched.
func TestConvertNonVasopressorPassesThrough(t *testing.T) {
	ctx := context.Background()
	conn, err := engine.Open(ctx)
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	defer conn.Close()

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	medTable := clif.New("medication_admin_continuous",
		[]string{"hospitalization_id", "admin_dttm", "med_category", "med_dose", "med_dose_unit"})
	medTable.Rows = []clif.Row{med("H1", at, "propofol", 20, "mcg/kg/min")}
	vitals := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})

	out, err := Convert(ctx, conn, medTable, vitals, Options{TargetUnit: "mcg/min"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	row := out.Rows[0]
	if unit := row.Get("med_dose_unit").AsString(); unit != "mcg/kg/min" {
		t.Fatalf("non-vasopressor row should pass through untouched, got unit %q", unit)
	}
	if !row.Get("unit_conversion_applied").IsNull() {
		t.Fatalf("non-vasopressor row should not get a unit_conversion_applied marker")
	}
}
