// Package loader reads a CLIF table by name from a data directory
// (Parquet or CSV), converts its timestamp columns into a caller-supplied
// site timezone, and runs the advisory schema/range validation the core
// treats as an external collaborator.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"clifgo/clif"
	"clifgo/schema"
)

// Format is the on-disk encoding of a table file.
type Format string

const (
	Parquet Format = "parquet"
	CSV     Format = "csv"
)

// Options configures one Load call, per §6 Loader options.
type Options struct {
	Format     Format
	SiteTZ     string // IANA zone name; empty leaves timestamps as read
	SampleSize int    // 0 means no cap
	Columns    []string
	Filters    map[string]string
}

// Load reads clif_{table}.{ext} from dir and returns the parsed table plus
// its advisory validation report.
func Load(ctx context.Context, table, dir string, opts Options) (*clif.Table, *ValidationReport, error) {
	format := opts.Format
	if format == "" {
		format = Parquet
	}
	ext := "parquet"
	if format == CSV {
		ext = "csv"
	}
	path := filepath.Join(dir, fmt.Sprintf("clif_%s.%s", table, ext))

	desc := schema.ByName(table)
	if desc == nil {
		return nil, nil, fmt.Errorf("loader: unknown table %q", table)
	}

	var t *clif.Table
	var err error
	if format == CSV {
		t, err = readCSVRows(ctx, path)
	} else {
		t, err = loadParquet(table, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loader: %s: %w", table, err)
	}

	applyProjection(t, opts.Columns)
	applyFilters(t, opts.Filters)
	applySampleSize(t, opts.SampleSize)

	if opts.SiteTZ != "" {
		loc, err := time.LoadLocation(opts.SiteTZ)
		if err != nil {
			return nil, nil, fmt.Errorf("loader: site_tz %q: %w", opts.SiteTZ, err)
		}
		convertTimezone(t, loc)
	}

	return t, validate(t, desc), nil
}

func loadParquet(table, path string) (*clif.Table, error) {
	switch table {
	case "patient":
		rows, err := readParquetRows[PatientRow](path)
		if err != nil {
			return nil, err
		}
		return patientTable(rows), nil
	case "hospitalization":
		rows, err := readParquetRows[HospitalizationRow](path)
		if err != nil {
			return nil, err
		}
		return hospitalizationTable(rows), nil
	case "adt":
		rows, err := readParquetRows[ADTRow](path)
		if err != nil {
			return nil, err
		}
		return adtTable(rows), nil
	case "vitals":
		rows, err := readParquetRows[VitalsRow](path)
		if err != nil {
			return nil, err
		}
		return vitalsTable(rows), nil
	case "labs":
		rows, err := readParquetRows[LabsRow](path)
		if err != nil {
			return nil, err
		}
		return labsTable(rows), nil
	case "medication_admin_continuous":
		rows, err := readParquetRows[MedicationAdminContinuousRow](path)
		if err != nil {
			return nil, err
		}
		return medicationTable(rows), nil
	case "patient_assessments":
		rows, err := readParquetRows[PatientAssessmentsRow](path)
		if err != nil {
			return nil, err
		}
		return assessmentsTable(rows), nil
	case "respiratory_support":
		rows, err := readParquetRows[RespiratorySupportRow](path)
		if err != nil {
			return nil, err
		}
		return respiratoryTable(rows), nil
	default:
		return nil, fmt.Errorf("no parquet row type registered for %q", table)
	}
}

func applyProjection(t *clif.Table, cols []string) {
	if len(cols) == 0 {
		return
	}
	keep := map[string]bool{}
	for _, c := range cols {
		if t.HasColumn(c) {
			keep[c] = true
		}
	}
	out := t.Columns[:0]
	for _, c := range t.Columns {
		if keep[c] {
			out = append(out, c)
		}
	}
	t.Columns = out
}

func applyFilters(t *clif.Table, filters map[string]string) {
	if len(filters) == 0 {
		return
	}
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		match := true
		for col, want := range filters {
			if row.Get(col).AsString() != want {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

func applySampleSize(t *clif.Table, n int) {
	if n <= 0 || n >= len(t.Rows) {
		return
	}
	t.Rows = t.Rows[:n]
}
