package engine

import "github.com/metria/innovation-accounting/pkg/mathutil"

// Normalize returns a copy of f with every field coerced to a finite,
// non-negative number and, when the unit economics describe a strictly
// positive saving, MonthlySavings replaced by that derived saving.
func (f FinancialInputs) Normalize() FinancialInputs {
	n := FinancialInputs{
		DirectCost:        mathutil.NonNegative(f.DirectCost),
		ExternalFees:      mathutil.NonNegative(f.ExternalFees),
		HourlyRate:        mathutil.NonNegative(f.HourlyRate),
		HoursPerMonth:     mathutil.NonNegative(f.HoursPerMonth),
		TeamSize:          mathutil.NonNegative(f.TeamSize),
		MonthsToImplement: mathutil.NonNegative(f.MonthsToImplement),
		StartupCost:       mathutil.NonNegative(f.StartupCost),
		Licenses:          mathutil.NonNegative(f.Licenses),
		ServicesCost:      mathutil.NonNegative(f.ServicesCost),
		OtherExpenses:     mathutil.NonNegative(f.OtherExpenses),
		MonthlySavings:    mathutil.NonNegative(f.MonthlySavings),
		MonthlyRevenue:    mathutil.NonNegative(f.MonthlyRevenue),
		LifespanMonths:    mathutil.NonNegative(f.LifespanMonths),
		DiscountRate:      mathutil.NonNegative(f.DiscountRate),
		UnitCostCurrent:   mathutil.NonNegative(f.UnitCostCurrent),
		UnitCostNew:       mathutil.NonNegative(f.UnitCostNew),
		MonthlyVolume:     mathutil.NonNegative(f.MonthlyVolume),
	}
	if saving, ok := n.UnitSavings(); ok {
		n.MonthlySavings = saving
	}
	return n
}

// UnitSavings derives the monthly saving from the unit economics triple. It
// reports false unless all three fields are positive and the saving is
// strictly positive; a loss is never derived.
func (f FinancialInputs) UnitSavings() (float64, bool) {
	if f.UnitCostCurrent <= 0 || f.UnitCostNew <= 0 || f.MonthlyVolume <= 0 {
		return 0, false
	}
	saving := mathutil.Finite((f.UnitCostCurrent - f.UnitCostNew) * f.MonthlyVolume)
	if saving <= 0 {
		return 0, false
	}
	return saving, true
}

// Normalize clamps every scenario field to a finite, non-negative number.
func (s Scenario) Normalize() Scenario {
	return Scenario{
		BaseCost:    mathutil.NonNegative(s.BaseCost),
		Volume:      mathutil.NonNegative(s.Volume),
		UnitSavings: mathutil.NonNegative(s.UnitSavings),
	}
}

// Normalize clamps all three scenarios.
func (s ScenarioSet) Normalize() ScenarioSet {
	return ScenarioSet{
		Pessimistic: s.Pessimistic.Normalize(),
		Realistic:   s.Realistic.Normalize(),
		Optimistic:  s.Optimistic.Normalize(),
	}
}
