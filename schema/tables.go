package schema

// Category enums (mCIDE — minimum Common ICU Data Elements). These are the
// permissible values a validator checks category columns against; the core
// itself only cares about the category *column name*, not this list, but
// callers building category_filters need somewhere authoritative to look.

var vitalCategories = []string{
	"heart_rate", "sbp", "dbp", "map", "spo2", "respiratory_rate",
	"temp_c", "weight_kg", "height_cm",
}

var labCategories = []string{
	"sodium", "potassium", "chloride", "co2", "bun", "creatinine",
	"glucose_serum", "calcium_total", "calcium_ionized", "magnesium",
	"phosphate", "hemoglobin", "hematocrit", "wbc", "platelet_count",
	"lactate", "ph_arterial", "pco2_arterial", "po2_arterial",
	"albumin", "ast", "alt", "total_bilirubin", "inr", "ptt",
}

// VasopressorCategories is the closed set the unit-conversion engine (§4.3)
// rewrites. Exported because vaso needs the exact set.
var VasopressorCategories = []string{
	"norepinephrine", "epinephrine", "dopamine", "dobutamine",
	"phenylephrine", "vasopressin", "angiotensin_ii", "isoproterenol",
	"milrinone",
}

var medCategories = append(append([]string{}, VasopressorCategories...),
	"propofol", "fentanyl", "midazolam", "dexmedetomidine", "insulin",
)

var assessmentCategories = []string{
	"gcs_total", "gcs_eye", "gcs_verbal", "gcs_motor", "rass", "cam_icu",
	"braden_total", "sat_screen", "sbt_screen",
}

var locationCategories = []string{"icu", "ward", "ed", "procedural", "or", "other"}

// Patient returns the descriptor for the patient table.
func Patient() *Table {
	return build("patient", []Column{
		{Name: "patient_id", DataType: Text, Required: true},
		{Name: "race_category", DataType: Text, IsCategoryColumn: true},
		{Name: "ethnicity_category", DataType: Text, IsCategoryColumn: true},
		{Name: "sex_category", DataType: Text, IsCategoryColumn: true},
		{Name: "birth_date", DataType: Timestamp},
		{Name: "death_dttm", DataType: Timestamp},
	})
}

// Hospitalization returns the descriptor for the hospitalization table.
func Hospitalization() *Table {
	return build("hospitalization", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "patient_id", DataType: Text, Required: true},
		{Name: "admission_dttm", DataType: Timestamp, Required: true},
		{Name: "discharge_dttm", DataType: Timestamp},
		{Name: "age_at_admission", DataType: Integer},
		{Name: "discharge_category", DataType: Text, IsCategoryColumn: true},
	})
}

// ADT returns the descriptor for the location-transfer (ADT) table.
func ADT() *Table {
	return build("adt", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "in_dttm", DataType: Timestamp, Required: true},
		{Name: "out_dttm", DataType: Timestamp},
		{Name: "location_category", DataType: Text, Required: true, IsCategoryColumn: true, PermissibleValues: locationCategories},
	})
}

// Vitals returns the descriptor for the vitals table. Vitals is the only
// table that carries both units and numeric ranges per category, per §3.
func Vitals() *Table {
	t := build("vitals", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "recorded_dttm", DataType: Timestamp, Required: true},
		{Name: "vital_category", DataType: Text, Required: true, IsCategoryColumn: true, PermissibleValues: vitalCategories},
		{Name: "vital_value", DataType: Floating, Required: true},
	})
	t.VitalUnits = map[string]string{
		"heart_rate": "bpm", "sbp": "mmHg", "dbp": "mmHg", "map": "mmHg",
		"spo2": "%", "respiratory_rate": "breaths/min", "temp_c": "C",
		"weight_kg": "kg", "height_cm": "cm",
	}
	t.VitalRanges = []VitalRange{
		{Category: "heart_rate", Unit: "bpm", Min: 20, Max: 300},
		{Category: "sbp", Unit: "mmHg", Min: 20, Max: 300},
		{Category: "dbp", Unit: "mmHg", Min: 5, Max: 200},
		{Category: "map", Unit: "mmHg", Min: 10, Max: 250},
		{Category: "spo2", Unit: "%", Min: 0, Max: 100},
		{Category: "respiratory_rate", Unit: "breaths/min", Min: 0, Max: 100},
		{Category: "temp_c", Unit: "C", Min: 25, Max: 45},
		{Category: "weight_kg", Unit: "kg", Min: 0.3, Max: 500},
		{Category: "height_cm", Unit: "cm", Min: 20, Max: 250},
	}
	return t
}

// Labs returns the descriptor for the labs table. The timestamp column is
// named lab_result_dttm here; TimestampCandidates lists the fallback order
// from spec §4.1 step 3 that the wide builder applies when it is absent.
func Labs() *Table {
	return build("labs", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "lab_result_dttm", DataType: Timestamp},
		{Name: "lab_collect_dttm", DataType: Timestamp},
		{Name: "recorded_dttm", DataType: Timestamp},
		{Name: "lab_order_dttm", DataType: Timestamp},
		{Name: "lab_category", DataType: Text, Required: true, IsCategoryColumn: true, PermissibleValues: labCategories},
		{Name: "lab_value_numeric", DataType: Floating, Required: true},
	})
}

// MedicationAdminContinuous returns the descriptor for the continuous
// medication administration table (infusions, including vasopressors).
func MedicationAdminContinuous() *Table {
	return build("medication_admin_continuous", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "admin_dttm", DataType: Timestamp, Required: true},
		{Name: "med_category", DataType: Text, Required: true, IsCategoryColumn: true, PermissibleValues: medCategories},
		{Name: "med_dose", DataType: Floating, Required: true},
		{Name: "med_dose_unit", DataType: Text, Required: true},
	})
}

// PatientAssessments returns the descriptor for the structured-assessment
// table. Per §9's open question, this implementation pivots the numeric
// assessment_value and carries categorical_value/text_value through
// unpivoted (see wide.buildAssessmentAux).
func PatientAssessments() *Table {
	return build("patient_assessments", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "recorded_dttm", DataType: Timestamp, Required: true},
		{Name: "assessment_category", DataType: Text, Required: true, IsCategoryColumn: true, PermissibleValues: assessmentCategories},
		{Name: "assessment_value", DataType: Floating},
		{Name: "categorical_value", DataType: Text},
		{Name: "text_value", DataType: Text},
	})
}

// RespiratorySupport returns the descriptor for the respiratory-support
// table. Never pivoted (§3, §9): rows are copied wide, first-wins on
// combo_id when multiple rows share a minute.
func RespiratorySupport() *Table {
	return build("respiratory_support", []Column{
		{Name: "hospitalization_id", DataType: Text, Required: true},
		{Name: "recorded_dttm", DataType: Timestamp, Required: true},
		{Name: "device_category", DataType: Text, IsCategoryColumn: true},
		{Name: "mode_category", DataType: Text, IsCategoryColumn: true},
		{Name: "fio2_set", DataType: Floating},
		{Name: "peep_set", DataType: Floating},
		{Name: "tidal_volume_set", DataType: Floating},
		{Name: "resp_rate_set", DataType: Floating},
		{Name: "resp_rate_obs", DataType: Floating},
		{Name: "peak_inspiratory_pressure_obs", DataType: Floating},
		{Name: "plateau_pressure_obs", DataType: Floating},
		{Name: "lpm_set", DataType: Floating},
	})
}

// PivotSources lists the four pivotable event tables in the fixed order
// spec §4.1 step 5 enumerates them.
var PivotSources = []string{"vitals", "labs", "medication_admin_continuous", "patient_assessments"}

// OptionalTables lists every table build_wide's optional_tables selection
// may name (§4.1 Inputs).
var OptionalTables = []string{
	"vitals", "labs", "medication_admin_continuous",
	"patient_assessments", "respiratory_support",
}

// ByName returns the descriptor for a table by its CLIF file-stem name
// (e.g. "vitals" for clif_vitals.parquet), or nil if unknown.
func ByName(name string) *Table {
	switch name {
	case "patient":
		return Patient()
	case "hospitalization":
		return Hospitalization()
	case "adt":
		return ADT()
	case "vitals":
		return Vitals()
	case "labs":
		return Labs()
	case "medication_admin_continuous":
		return MedicationAdminContinuous()
	case "patient_assessments":
		return PatientAssessments()
	case "respiratory_support":
		return RespiratorySupport()
	default:
		return nil
	}
}

// CategoryColumn returns the category column name for a pivotable source,
// per the table in spec §4.1 step 5.
func CategoryColumn(table string) string {
	switch table {
	case "vitals":
		return "vital_category"
	case "labs":
		return "lab_category"
	case "medication_admin_continuous":
		return "med_category"
	case "patient_assessments":
		return "assessment_category"
	default:
		return ""
	}
}

// ValueColumn returns the value column name for a pivotable source, per the
// table in spec §4.1 step 5.
func ValueColumn(table string) string {
	switch table {
	case "vitals":
		return "vital_value"
	case "labs":
		return "lab_value_numeric"
	case "medication_admin_continuous":
		return "med_dose"
	case "patient_assessments":
		return "assessment_value"
	default:
		return ""
	}
}

// TimestampCandidates returns the timestamp-column fallback order for a
// table, per spec §4.1 step 3. The first candidate present in a loaded
// table's columns wins.
func TimestampCandidates(table string) []string {
	switch table {
	case "adt":
		return []string{"in_dttm"}
	case "vitals":
		return []string{"recorded_dttm"}
	case "labs":
		return []string{"lab_result_dttm", "lab_collect_dttm", "recorded_dttm", "lab_order_dttm"}
	case "medication_admin_continuous":
		return []string{"admin_dttm"}
	case "patient_assessments":
		return []string{"recorded_dttm"}
	case "respiratory_support":
		return []string{"recorded_dttm"}
	default:
		return nil
	}
}
