package engine

import (
	"github.com/metria/innovation-accounting/pkg/constants"
	"github.com/metria/innovation-accounting/pkg/mathutil"
)

const (
	baselineScore = 50.0
	proBonus      = 20.0

	smallBetThreshold = 50000.0
	smallBetBonus     = 10.0

	savingsThreshold = 1000.0
	savingsBonus     = 10.0

	minScore = 0.0
	maxScore = 100.0
)

func (lightCalculator) modeBonus() float64 { return 0 }

func (proCalculator) modeBonus() float64 { return proBonus }

// LIGHT reports the proof-stage multiple.
func (lightCalculator) roiMultiple(m ComputedMetrics) float64 {
	return mathutil.SafeDivide(m.EconomicGainAtProof, m.CostOfProof)
}

// PRO reports the scale benefit-cost ratio.
func (proCalculator) roiMultiple(m ComputedMetrics) float64 {
	return m.BenefitCostRatio
}

// CompositeScore combines mode, bet size, savings and risk penalty into a
// 0-100 score.
func CompositeScore(c Calculator, costOfProof, monthlySavings, riskPenalty float64) float64 {
	score := baselineScore + c.modeBonus()
	if mathutil.NonNegative(costOfProof) < smallBetThreshold {
		score += smallBetBonus
	}
	if mathutil.NonNegative(monthlySavings) > savingsThreshold {
		score += savingsBonus
	}
	score -= mathutil.NonNegative(riskPenalty)
	return mathutil.Clamp(score, minScore, maxScore)
}

// PercentROI is the legacy percentage return over the cost of proof, rounded
// half up to an integer. Zero when there is no cost.
func PercentROI(economicGain, costOfProof float64) float64 {
	if !(costOfProof > 0) {
		return 0
	}
	return mathutil.Finite(mathutil.RoundHalfUp(economicGain / costOfProof * constants.PercentageMultiplier))
}
