package schema

import "testing"

func TestByNameKnownTables(t *testing.T) {
	for _, name := range []string{"patient", "hospitalization", "adt", "vitals", "labs",
		"medication_admin_continuous", "patient_assessments", "respiratory_support"} {
		if ByName(name) == nil {
			t.Errorf("ByName(%q) = nil, want a descriptor", name)
		}
	}
	if ByName("nonexistent") != nil {
		t.Errorf("ByName(nonexistent) should be nil")
	}
}

func TestLabsTimestampFallbackOrder(t *testing.T) {
	got := TimestampCandidates("labs")
	want := []string{"lab_result_dttm", "lab_collect_dttm", "recorded_dttm", "lab_order_dttm"}
	if len(got) != len(want) {
		t.Fatalf("TimestampCandidates(labs) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TimestampCandidates(labs)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategoryAndValueColumns(t *testing.T) {
	cases := map[string][2]string{
		"vitals":                      {"vital_category", "vital_value"},
		"labs":                        {"lab_category", "lab_value_numeric"},
		"medication_admin_continuous": {"med_category", "med_dose"},
		"patient_assessments":         {"assessment_category", "assessment_value"},
	}
	for table, want := range cases {
		if got := CategoryColumn(table); got != want[0] {
			t.Errorf("CategoryColumn(%q) = %q, want %q", table, got, want[0])
		}
		if got := ValueColumn(table); got != want[1] {
			t.Errorf("ValueColumn(%q) = %q, want %q", table, got, want[1])
		}
	}
}

func TestVitalsRequiredColumns(t *testing.T) {
	v := Vitals()
	want := []string{"hospitalization_id", "recorded_dttm", "vital_category", "vital_value"}
	if len(v.RequiredColumns) != len(want) {
		t.Fatalf("Vitals().RequiredColumns = %v, want %v", v.RequiredColumns, want)
	}
	if len(v.VitalRanges) != 9 {
		t.Fatalf("Vitals().VitalRanges has %d entries, want 9", len(v.VitalRanges))
	}
}
