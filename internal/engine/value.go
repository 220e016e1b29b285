package engine

import "github.com/metria/innovation-accounting/pkg/mathutil"

// EconomicValue is the straight-line value generated over the project's
// lifespan.
type EconomicValue struct {
	MonthlyGain  float64
	TotalValue   float64
	EconomicGain float64
}

// Value derives the monthly gain, the lifetime value and the net gain over
// costOfProof. DiscountRate is ignored; no discounting is applied.
func Value(f FinancialInputs, costOfProof float64) EconomicValue {
	f = f.Normalize()
	monthly := mathutil.Finite(f.MonthlySavings + f.MonthlyRevenue)
	total := mathutil.Finite(monthly * f.LifespanMonths)
	return EconomicValue{
		MonthlyGain:  monthly,
		TotalValue:   total,
		EconomicGain: mathutil.Finite(total - mathutil.NonNegative(costOfProof)),
	}
}
