package loader

import (
	"time"

	"clifgo/clif"
	"clifgo/schema"
)

func strPtr(s *string) clif.Value {
	if s == nil {
		return clif.Null
	}
	return clif.Text(*s)
}

func timePtr(t *time.Time) clif.Value {
	if t == nil {
		return clif.Null
	}
	return clif.Timestamp(*t)
}

func floatPtr(f *float64) clif.Value {
	if f == nil {
		return clif.Null
	}
	return clif.Numeric(*f)
}

func intPtr(i *int64) clif.Value {
	if i == nil {
		return clif.Null
	}
	return clif.Numeric(float64(*i))
}

func patientTable(rows []PatientRow) *clif.Table {
	t := clif.New("patient", columnNames(schema.Patient()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"patient_id":         clif.Text(r.PatientID),
			"race_category":      strPtr(r.RaceCategory),
			"ethnicity_category": strPtr(r.EthnicityCategory),
			"sex_category":       strPtr(r.SexCategory),
			"birth_date":         timePtr(r.BirthDate),
			"death_dttm":         timePtr(r.DeathDttm),
		})
	}
	return t
}

func hospitalizationTable(rows []HospitalizationRow) *clif.Table {
	t := clif.New("hospitalization", columnNames(schema.Hospitalization()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id": clif.Text(r.HospitalizationID),
			"patient_id":         clif.Text(r.PatientID),
			"admission_dttm":     clif.Timestamp(r.AdmissionDttm),
			"discharge_dttm":     timePtr(r.DischargeDttm),
			"age_at_admission":   intPtr(r.AgeAtAdmission),
			"discharge_category": strPtr(r.DischargeCategory),
		})
	}
	return t
}

func adtTable(rows []ADTRow) *clif.Table {
	t := clif.New("adt", columnNames(schema.ADT()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id": clif.Text(r.HospitalizationID),
			"in_dttm":            clif.Timestamp(r.InDttm),
			"out_dttm":           timePtr(r.OutDttm),
			"location_category":  clif.Text(r.LocationCategory),
		})
	}
	return t
}

func vitalsTable(rows []VitalsRow) *clif.Table {
	t := clif.New("vitals", columnNames(schema.Vitals()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id": clif.Text(r.HospitalizationID),
			"recorded_dttm":      clif.Timestamp(r.RecordedDttm),
			"vital_category":     clif.Text(r.VitalCategory),
			"vital_value":        clif.Numeric(r.VitalValue),
		})
	}
	return t
}

func labsTable(rows []LabsRow) *clif.Table {
	t := clif.New("labs", columnNames(schema.Labs()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id": clif.Text(r.HospitalizationID),
			"lab_result_dttm":    timePtr(r.LabResultDttm),
			"lab_collect_dttm":   timePtr(r.LabCollectDttm),
			"recorded_dttm":      timePtr(r.RecordedDttm),
			"lab_order_dttm":     timePtr(r.LabOrderDttm),
			"lab_category":       clif.Text(r.LabCategory),
			"lab_value_numeric":  clif.Numeric(r.LabValueNumeric),
		})
	}
	return t
}

func medicationTable(rows []MedicationAdminContinuousRow) *clif.Table {
	t := clif.New("medication_admin_continuous", columnNames(schema.MedicationAdminContinuous()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id": clif.Text(r.HospitalizationID),
			"admin_dttm":         clif.Timestamp(r.AdminDttm),
			"med_category":       clif.Text(r.MedCategory),
			"med_dose":           clif.Numeric(r.MedDose),
			"med_dose_unit":      clif.Text(r.MedDoseUnit),
		})
	}
	return t
}

func assessmentsTable(rows []PatientAssessmentsRow) *clif.Table {
	t := clif.New("patient_assessments", columnNames(schema.PatientAssessments()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id":  clif.Text(r.HospitalizationID),
			"recorded_dttm":       clif.Timestamp(r.RecordedDttm),
			"assessment_category": clif.Text(r.AssessmentCategory),
			"assessment_value":    floatPtr(r.AssessmentValue),
			"categorical_value":   strPtr(r.CategoricalValue),
			"text_value":          strPtr(r.TextValue),
		})
	}
	return t
}

func respiratoryTable(rows []RespiratorySupportRow) *clif.Table {
	t := clif.New("respiratory_support", columnNames(schema.RespiratorySupport()))
	for _, r := range rows {
		t.Rows = append(t.Rows, clif.Row{
			"hospitalization_id":            clif.Text(r.HospitalizationID),
			"recorded_dttm":                 clif.Timestamp(r.RecordedDttm),
			"device_category":               strPtr(r.DeviceCategory),
			"mode_category":                 strPtr(r.ModeCategory),
			"fio2_set":                      floatPtr(r.FiO2Set),
			"peep_set":                      floatPtr(r.PeepSet),
			"tidal_volume_set":              floatPtr(r.TidalVolumeSet),
			"resp_rate_set":                 floatPtr(r.RespRateSet),
			"resp_rate_obs":                 floatPtr(r.RespRateObs),
			"peak_inspiratory_pressure_obs": floatPtr(r.PeakInspiratoryPressureObs),
			"plateau_pressure_obs":          floatPtr(r.PlateauPressureObs),
			"lpm_set":                       floatPtr(r.LpmSet),
		})
	}
	return t
}

func columnNames(desc *schema.Table) []string {
	names := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		names[i] = c.Name
	}
	return names
}
