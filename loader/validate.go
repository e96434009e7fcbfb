package loader

import (
	"fmt"

	"clifgo/clif"
	"clifgo/schema"
)

// ValidationReport is the advisory output of the external validator (§7):
// the core never aborts on these, it only surfaces them alongside the
// loaded table.
type ValidationReport struct {
	TableName           string
	ValidationErrors     []string
	RangeValidationErrors []string
}

// validate runs the required-column, category-enum, and vital-range checks
// §2's table loader interface promises, without mutating t.
func validate(t *clif.Table, desc *schema.Table) *ValidationReport {
	report := &ValidationReport{TableName: desc.TableName}

	for _, col := range desc.RequiredColumns {
		if !t.HasColumn(col) {
			report.ValidationErrors = append(report.ValidationErrors,
				fmt.Sprintf("missing required column %q", col))
			continue
		}
		for i, row := range t.Rows {
			if row.Get(col).IsNull() {
				report.ValidationErrors = append(report.ValidationErrors,
					fmt.Sprintf("row %d: required column %q is null", i, col))
			}
		}
	}

	for _, colDesc := range desc.Columns {
		if !colDesc.IsCategoryColumn || len(colDesc.PermissibleValues) == 0 {
			continue
		}
		allowed := map[string]bool{}
		for _, v := range colDesc.PermissibleValues {
			allowed[v] = true
		}
		for i, row := range t.Rows {
			v := row.Get(colDesc.Name)
			if v.IsNull() {
				continue
			}
			if !allowed[v.AsString()] {
				report.ValidationErrors = append(report.ValidationErrors,
					fmt.Sprintf("row %d: %q has unrecognized %s %q", i, colDesc.Name, colDesc.Name, v.AsString()))
			}
		}
	}

	if desc.TableName == "vitals" && len(desc.VitalRanges) > 0 {
		ranges := map[string]schema.VitalRange{}
		for _, r := range desc.VitalRanges {
			ranges[r.Category] = r
		}
		for i, row := range t.Rows {
			cat := row.Get("vital_category").AsString()
			r, ok := ranges[cat]
			if !ok {
				continue
			}
			val, ok := row.Get("vital_value").AsFloat()
			if !ok {
				continue
			}
			if val < r.Min || val > r.Max {
				report.RangeValidationErrors = append(report.RangeValidationErrors,
					fmt.Sprintf("row %d: %s=%g outside [%g, %g] %s", i, cat, val, r.Min, r.Max, r.Unit))
			}
		}
	}

	return report
}
