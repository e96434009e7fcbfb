// Package vaso implements the vasopressor unit-conversion engine: rewriting
// continuous medication administration doses for a closed set of
// vasopressor categories into a caller-chosen canonical unit, looking up
// patient weight when the target unit is weight-normalized.
package vaso

import "clifgo/schema"

// WeightOp is the weight-normalization step a conversion rule applies after
// the raw multiplier.
type WeightOp int

const (
	NoWeightOp WeightOp = iota
	DivideByWeight
	MultiplyByWeight
)

// Rule is one row of the (from_unit, to_unit, multiplier, weight_op) table.
// Composing mass-prefix and time-base conversion plus an optional weight
// normalization is expressible this way for every unit pair the closed
// vasopressor category set actually uses in practice, so the table is kept
// as plain data rather than a general unit-algebra parser.
type Rule struct {
	FromUnit string
	ToUnit   string
	// Multiplier converts the raw mass/time component only: dose * Multiplier
	// before WeightOp is applied.
	Multiplier float64
	WeightOp   WeightOp
}

type ruleKey struct {
	from, to string
}

// conversionTable is the closed set of supported (from,to) pairs. Units not
// listed are unknown per spec and produce a logged, nulled row.
var conversionTable = map[ruleKey]Rule{}

func addRule(from, to string, mult float64, op WeightOp) {
	conversionTable[ruleKey{from, to}] = Rule{FromUnit: from, ToUnit: to, Multiplier: mult, WeightOp: op}
}

func init() {
	// Identity conversions: source unit already equals target.
	for _, u := range []string{
		"mcg/min", "mcg/kg/min", "mg/min", "mg/kg/min", "mg/hr", "mcg/hr",
		"mcg/kg/hr", "units/min", "units/hr", "milliunits/min",
	} {
		addRule(u, u, 1, NoWeightOp)
	}

	// Non-weight-normalized <-> weight-normalized, same mass/time base.
	addRule("mcg/min", "mcg/kg/min", 1, DivideByWeight)
	addRule("mcg/kg/min", "mcg/min", 1, MultiplyByWeight)
	addRule("mcg/hr", "mcg/kg/hr", 1, DivideByWeight)
	addRule("mcg/kg/hr", "mcg/hr", 1, MultiplyByWeight)
	addRule("mg/min", "mg/kg/min", 1, DivideByWeight)
	addRule("mg/kg/min", "mg/min", 1, MultiplyByWeight)

	// Mass prefix, same time base, same weight-normalization.
	addRule("mg/min", "mcg/min", 1000, NoWeightOp)
	addRule("mcg/min", "mg/min", 1.0/1000, NoWeightOp)
	addRule("mg/kg/min", "mcg/kg/min", 1000, NoWeightOp)
	addRule("mcg/kg/min", "mg/kg/min", 1.0/1000, NoWeightOp)
	addRule("mg/hr", "mcg/hr", 1000, NoWeightOp)
	addRule("mcg/hr", "mg/hr", 1.0/1000, NoWeightOp)

	// Time base, same mass prefix and weight-normalization.
	addRule("mcg/min", "mcg/hr", 60, NoWeightOp)
	addRule("mcg/hr", "mcg/min", 1.0/60, NoWeightOp)
	addRule("mcg/kg/min", "mcg/kg/hr", 60, NoWeightOp)
	addRule("mcg/kg/hr", "mcg/kg/min", 1.0/60, NoWeightOp)
	addRule("mg/min", "mg/hr", 60, NoWeightOp)
	addRule("mg/hr", "mg/min", 1.0/60, NoWeightOp)

	// Cross mass-prefix AND time-base in one hop, composed multiplier.
	addRule("mg/min", "mcg/hr", 1000*60, NoWeightOp)
	addRule("mcg/hr", "mg/min", 1.0/(1000*60), NoWeightOp)
	addRule("mg/kg/min", "mcg/kg/hr", 1000*60, NoWeightOp)
	addRule("mcg/kg/hr", "mg/kg/min", 1.0/(1000*60), NoWeightOp)

	// Cross mass-prefix AND weight-normalization in one hop.
	addRule("mg/min", "mcg/kg/min", 1000, DivideByWeight)
	addRule("mcg/kg/min", "mg/min", 1.0/1000, MultiplyByWeight)

	// Vasopressin: fixed unit, time-base and units/milliunits conversion only,
	// never weight-normalized.
	addRule("units/min", "units/hr", 60, NoWeightOp)
	addRule("units/hr", "units/min", 1.0/60, NoWeightOp)
	addRule("units/min", "milliunits/min", 1000, NoWeightOp)
	addRule("milliunits/min", "units/min", 1.0/1000, NoWeightOp)
}

// Lookup returns the rule converting fromUnit to toUnit, if the pair is in
// the closed table.
func Lookup(fromUnit, toUnit string) (Rule, bool) {
	r, ok := conversionTable[ruleKey{fromUnit, toUnit}]
	return r, ok
}

// IsVasopressor reports whether category is one of the nine categories this
// engine rewrites.
func IsVasopressor(category string) bool {
	for _, c := range schema.VasopressorCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IsVasopressin reports whether category is the one category with a fixed,
// never-weight-normalized unit.
func IsVasopressin(category string) bool {
	return category == "vasopressin"
}
