package vaso

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"clifgo/clif"
	"clifgo/engine"
)

// Options configures one convert_vaso_units call.
type Options struct {
	// TargetUnit is the unit every vasopressor row (other than vasopressin,
	// which only moves between units/min and units/hr) is converted to.
	TargetUnit string
	// WeightColumn names the vitals category to join against for weight
	// lookups; defaults to "weight_kg".
	WeightColumn string
	Logger       *zerolog.Logger
}

// Convert rewrites med_dose and med_dose_unit on every row of med whose
// med_category is one of the nine vasopressor categories, per §4.3. Rows for
// other categories pass through unchanged. A new boolean column,
// unit_conversion_applied, is added to every vasopressor row.
func Convert(ctx context.Context, conn *engine.Conn, med, vitals *clif.Table, opts Options) (*clif.Table, error) {
	weightCol := opts.WeightColumn
	if weightCol == "" {
		weightCol = "weight_kg"
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	weightsByHosp, err := weightLookupTable(ctx, conn, vitals, weightCol)
	if err != nil {
		return nil, fmt.Errorf("vaso: build weight lookup: %w", err)
	}

	out := clif.New(med.Name, append([]string{}, med.Columns...))
	out.AddColumn("unit_conversion_applied")

	for _, row := range med.Rows {
		category := row.Get("med_category").AsString()
		if !IsVasopressor(category) {
			out.Rows = append(out.Rows, row)
			continue
		}

		target := opts.TargetUnit
		if IsVasopressin(category) {
			// Vasopressin never takes a weight-normalized target; if the
			// caller asked for one, fall back to the row's own unit so the
			// only conversion attempted is a time-base change between
			// units/min and units/hr, per §4.3.
			if isWeightNormalized(target) {
				target = row.Get("med_dose_unit").AsString()
			}
		}

		converted := convertRow(row, target, weightsByHosp, logger)
		out.Rows = append(out.Rows, converted)
	}
	return out, nil
}

func isWeightNormalized(unit string) bool {
	switch unit {
	case "mcg/kg/min", "mcg/kg/hr", "mg/kg/min":
		return true
	default:
		return false
	}
}

func convertRow(row clif.Row, targetUnit string, weights map[string]*clif.Table, logger *zerolog.Logger) clif.Row {
	out := clif.Row{}
	for k, v := range row {
		out[k] = v
	}

	fromUnit := row.Get("med_dose_unit").AsString()
	hospID := row.Get("hospitalization_id").AsString()
	category := row.Get("med_category").AsString()
	dose, hasDose := row.Get("med_dose").AsFloat()

	if fromUnit == targetUnit {
		out["med_dose_unit"] = clif.Text(targetUnit)
		out["unit_conversion_applied"] = clif.Boolean(true)
		return out
	}

	rule, known := Lookup(fromUnit, targetUnit)
	if !known {
		logger.Warn().Str("hospitalization_id", hospID).Str("category", category).
			Str("from_unit", fromUnit).Str("to_unit", targetUnit).
			Msg("vaso: unknown unit conversion, dose nulled")
		out["med_dose"] = clif.Null
		out["med_dose_unit"] = clif.Text(targetUnit)
		out["unit_conversion_applied"] = clif.Boolean(false)
		return out
	}

	if !hasDose {
		out["med_dose"] = clif.Null
		out["med_dose_unit"] = clif.Text(targetUnit)
		out["unit_conversion_applied"] = clif.Boolean(false)
		return out
	}

	result := dose * rule.Multiplier

	if rule.WeightOp != NoWeightOp {
		wt, ok := nearestWeightKg(weights[hospID], row.Get("admin_dttm"), logger)
		if !ok {
			logger.Warn().Str("hospitalization_id", hospID).Str("category", category).
				Msg("vaso: no weight observation for hospitalization, dose nulled")
			out["med_dose"] = clif.Null
			out["med_dose_unit"] = clif.Text(targetUnit)
			out["unit_conversion_applied"] = clif.Boolean(false)
			return out
		}
		switch rule.WeightOp {
		case DivideByWeight:
			if wt == 0 {
				out["med_dose"] = clif.Null
				out["med_dose_unit"] = clif.Text(targetUnit)
				out["unit_conversion_applied"] = clif.Boolean(false)
				return out
			}
			result = result / wt
		case MultiplyByWeight:
			result = result * wt
		}
	}

	out["med_dose"] = clif.Numeric(result)
	out["med_dose_unit"] = clif.Text(targetUnit)
	out["unit_conversion_applied"] = clif.Boolean(true)
	return out
}

func weightLookupTable(ctx context.Context, conn *engine.Conn, vitals *clif.Table, weightCol string) (map[string]*clif.Table, error) {
	if vitals == nil {
		return map[string]*clif.Table{}, nil
	}
	if err := conn.Register(ctx, "vaso_vitals_src", vitals, nil); err != nil {
		return nil, err
	}
	return nearestWeight(ctx, conn, "vaso_vitals_src", "vital_category", "vital_value", weightCol)
}
