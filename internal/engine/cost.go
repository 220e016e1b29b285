package engine

import "github.com/metria/innovation-accounting/pkg/mathutil"

// CostOfProof for LIGHT projects: direct cost, external fees and the labor of
// a single dedicated person over the proof period.
func (lightCalculator) CostOfProof(f FinancialInputs) float64 {
	f = f.Normalize()
	labor := f.HourlyRate * f.HoursPerMonth * f.MonthsToImplement
	return mathutil.NonNegative(f.DirectCost + f.ExternalFees + labor)
}

// CostOfProof for PRO projects: the detailed cost lines plus the labor of the
// whole team over the proof period. DirectCost is not used.
func (proCalculator) CostOfProof(f FinancialInputs) float64 {
	f = f.Normalize()
	labor := f.HourlyRate * f.HoursPerMonth * f.TeamSize * f.MonthsToImplement
	return mathutil.NonNegative(f.StartupCost + f.ExternalFees + f.Licenses + f.ServicesCost + f.OtherExpenses + labor)
}
