package loader

import "time"

// Each CLIF source table has a fixed schema, so — unlike the dynamic wide
// and hourly outputs — it reads cleanly into a dedicated Parquet row
// struct: one struct per table, optional (*T) fields for nullable columns.

type PatientRow struct {
	PatientID         string     `parquet:"patient_id"`
	RaceCategory      *string    `parquet:"race_category,optional"`
	EthnicityCategory *string    `parquet:"ethnicity_category,optional"`
	SexCategory       *string    `parquet:"sex_category,optional"`
	BirthDate         *time.Time `parquet:"birth_date,optional"`
	DeathDttm         *time.Time `parquet:"death_dttm,optional"`
}

type HospitalizationRow struct {
	HospitalizationID string     `parquet:"hospitalization_id"`
	PatientID         string     `parquet:"patient_id"`
	AdmissionDttm     time.Time  `parquet:"admission_dttm"`
	DischargeDttm     *time.Time `parquet:"discharge_dttm,optional"`
	AgeAtAdmission    *int64     `parquet:"age_at_admission,optional"`
	DischargeCategory *string    `parquet:"discharge_category,optional"`
}

type ADTRow struct {
	HospitalizationID string     `parquet:"hospitalization_id"`
	InDttm            time.Time  `parquet:"in_dttm"`
	OutDttm           *time.Time `parquet:"out_dttm,optional"`
	LocationCategory  string     `parquet:"location_category"`
}

type VitalsRow struct {
	HospitalizationID string    `parquet:"hospitalization_id"`
	RecordedDttm      time.Time `parquet:"recorded_dttm"`
	VitalCategory     string    `parquet:"vital_category"`
	VitalValue        float64   `parquet:"vital_value"`
}

type LabsRow struct {
	HospitalizationID string     `parquet:"hospitalization_id"`
	LabResultDttm     *time.Time `parquet:"lab_result_dttm,optional"`
	LabCollectDttm    *time.Time `parquet:"lab_collect_dttm,optional"`
	RecordedDttm      *time.Time `parquet:"recorded_dttm,optional"`
	LabOrderDttm      *time.Time `parquet:"lab_order_dttm,optional"`
	LabCategory       string     `parquet:"lab_category"`
	LabValueNumeric   float64    `parquet:"lab_value_numeric"`
}

type MedicationAdminContinuousRow struct {
	HospitalizationID string    `parquet:"hospitalization_id"`
	AdminDttm         time.Time `parquet:"admin_dttm"`
	MedCategory       string    `parquet:"med_category"`
	MedDose           float64   `parquet:"med_dose"`
	MedDoseUnit       string    `parquet:"med_dose_unit"`
}

type PatientAssessmentsRow struct {
	HospitalizationID   string    `parquet:"hospitalization_id"`
	RecordedDttm        time.Time `parquet:"recorded_dttm"`
	AssessmentCategory  string    `parquet:"assessment_category"`
	AssessmentValue     *float64  `parquet:"assessment_value,optional"`
	CategoricalValue    *string   `parquet:"categorical_value,optional"`
	TextValue           *string   `parquet:"text_value,optional"`
}

type RespiratorySupportRow struct {
	HospitalizationID          string    `parquet:"hospitalization_id"`
	RecordedDttm               time.Time `parquet:"recorded_dttm"`
	DeviceCategory             *string   `parquet:"device_category,optional"`
	ModeCategory               *string   `parquet:"mode_category,optional"`
	FiO2Set                    *float64  `parquet:"fio2_set,optional"`
	PeepSet                    *float64  `parquet:"peep_set,optional"`
	TidalVolumeSet             *float64  `parquet:"tidal_volume_set,optional"`
	RespRateSet                *float64  `parquet:"resp_rate_set,optional"`
	RespRateObs                *float64  `parquet:"resp_rate_obs,optional"`
	PeakInspiratoryPressureObs *float64  `parquet:"peak_inspiratory_pressure_obs,optional"`
	PlateauPressureObs         *float64  `parquet:"plateau_pressure_obs,optional"`
	LpmSet                     *float64  `parquet:"lpm_set,optional"`
}
