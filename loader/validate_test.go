package loader

import (
	"testing"
	"time"

	"clifgo/clif"
	"clifgo/schema"
)

func TestValidateMissingRequiredColumn(t *testing.T) {
	tbl := clif.New("vitals", []string{"hospitalization_id", "vital_category", "vital_value"})
	tbl.Rows = []clif.Row{{
		"hospitalization_id": clif.Text("H1"),
		"vital_category":      clif.Text("heart_rate"),
		"vital_value":         clif.Numeric(80),
	}}

	report := validate(tbl, schema.Vitals())
	found := false
	for _, e := range report.ValidationErrors {
		if e == `missing required column "recorded_dttm"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing required column error for recorded_dttm, got %v", report.ValidationErrors)
	}
}

func TestValidateNullRequiredColumn(t *testing.T) {
	tbl := clif.New("hospitalization", []string{"hospitalization_id", "patient_id", "admission_dttm"})
	tbl.Rows = []clif.Row{{
		"hospitalization_id": clif.Text("H1"),
		"patient_id":          clif.Null,
		"admission_dttm":      clif.Null,
	}}

	report := validate(tbl, schema.Hospitalization())
	if len(report.ValidationErrors) == 0 {
		t.Fatalf("expected validation errors for null required columns")
	}
}

func TestValidateCategoryEnum(t *testing.T) {
	tbl := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})
	tbl.Rows = []clif.Row{{
		"hospitalization_id": clif.Text("H1"),
		"recorded_dttm":       clif.Null,
		"vital_category":      clif.Text("not_a_real_category"),
		"vital_value":         clif.Numeric(80),
	}}

	report := validate(tbl, schema.Vitals())
	found := false
	for _, e := range report.ValidationErrors {
		if e == `row 0: "vital_category" has unrecognized vital_category "not_a_real_category"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unrecognized category error, got %v", report.ValidationErrors)
	}
}

func TestValidateVitalRange(t *testing.T) {
	tbl := clif.New("vitals", []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"})
	tbl.Rows = []clif.Row{
		{
			"hospitalization_id": clif.Text("H1"),
			"recorded_dttm":       clif.Null,
			"vital_category":      clif.Text("heart_rate"),
			"vital_value":         clif.Numeric(500),
		},
		{
			"hospitalization_id": clif.Text("H1"),
			"recorded_dttm":       clif.Null,
			"vital_category":      clif.Text("heart_rate"),
			"vital_value":         clif.Numeric(80),
		},
	}

	report := validate(tbl, schema.Vitals())
	if len(report.RangeValidationErrors) != 1 {
		t.Fatalf("expected exactly 1 range validation error, got %v", report.RangeValidationErrors)
	}
}

func TestValidateCleanTableProducesNoErrors(t *testing.T) {
	tbl := clif.New("adt", []string{"hospitalization_id", "in_dttm", "location_category"})
	tbl.Rows = []clif.Row{{
		"hospitalization_id": clif.Text("H1"),
		"in_dttm":             clif.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		"location_category":   clif.Text("icu"),
	}}

	report := validate(tbl, schema.ADT())
	if len(report.ValidationErrors) != 0 || len(report.RangeValidationErrors) != 0 {
		t.Fatalf("expected no validation errors, got %v / %v", report.ValidationErrors, report.RangeValidationErrors)
	}
}
