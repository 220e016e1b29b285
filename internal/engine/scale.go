package engine

import (
	"github.com/metria/innovation-accounting/pkg/constants"
	"github.com/metria/innovation-accounting/pkg/mathutil"
)

// PERT weights applied to a three-point estimate.
const (
	WeightPessimistic = 1.0
	WeightRealistic   = 4.0
	WeightOptimistic  = 1.0
	WeightTotal       = WeightPessimistic + WeightRealistic + WeightOptimistic
)

// Fixed variations used to synthesize scenarios when no scenario set exists.
const (
	fallbackScaleMultiplier = 4.0

	fallbackCostOptimistic  = 0.9
	fallbackCostPessimistic = 1.2

	fallbackValueOptimistic  = 1.3
	fallbackValuePessimistic = 0.8
)

// ThreePoint is a pessimistic/realistic/optimistic estimate.
type ThreePoint struct {
	Pessimistic float64 `json:"pessimistic"`
	Realistic   float64 `json:"realistic"`
	Optimistic  float64 `json:"optimistic"`
}

// Weighted returns the 1:4:1 PERT average of the estimate.
func (t ThreePoint) Weighted() float64 {
	sum := t.Realistic*WeightRealistic + t.Optimistic*WeightOptimistic + t.Pessimistic*WeightPessimistic
	return mathutil.Finite(sum / WeightTotal)
}

// ScaleProjection is the weighted estimate of rolling the initiative out.
type ScaleProjection struct {
	Cost  ThreePoint `json:"cost"`
	Value ThreePoint `json:"value"`

	// Synthesized is set when the scenarios came from the fixed-percentage
	// fallback rather than user-entered scenarios.
	Synthesized bool `json:"synthesized"`

	ScaleCost         float64 `json:"scaleCost"`
	ScaleValue        float64 `json:"scaleValue"`
	ScaleEconomicGain float64 `json:"scaleEconomicGain"`
	BenefitCostRatio  float64 `json:"benefitCostRatio"`
}

func newScaleProjection(cost, value ThreePoint, synthesized bool) ScaleProjection {
	p := ScaleProjection{
		Cost:        cost,
		Value:       value,
		Synthesized: synthesized,
		ScaleCost:   mathutil.NonNegative(cost.Weighted()),
		ScaleValue:  mathutil.NonNegative(value.Weighted()),
	}
	p.ScaleEconomicGain = mathutil.Finite(p.ScaleValue - p.ScaleCost)
	// A zero ratio means the cost data is insufficient, not breakeven.
	p.BenefitCostRatio = mathutil.SafeDivide(p.ScaleEconomicGain, p.ScaleCost)
	return p
}

// fallbackProjection scales the proof figures by four and spreads them with
// fixed percentage variations.
func fallbackProjection(costOfProof, pocValue float64) ScaleProjection {
	baseCost := mathutil.NonNegative(costOfProof) * fallbackScaleMultiplier
	baseValue := mathutil.NonNegative(pocValue) * fallbackScaleMultiplier
	cost := ThreePoint{
		Pessimistic: baseCost * fallbackCostPessimistic,
		Realistic:   baseCost,
		Optimistic:  baseCost * fallbackCostOptimistic,
	}
	value := ThreePoint{
		Pessimistic: baseValue * fallbackValuePessimistic,
		Realistic:   baseValue,
		Optimistic:  baseValue * fallbackValueOptimistic,
	}
	return newScaleProjection(cost, value, true)
}

// ScaleProjection for LIGHT projects always uses the fallback; scenarios are
// ignored.
func (c lightCalculator) ScaleProjection(f FinancialInputs, _ *ScenarioSet) ScaleProjection {
	cpoc := c.CostOfProof(f)
	return fallbackProjection(cpoc, Value(f, cpoc).TotalValue)
}

// ScaleProjection for PRO projects weights the entered scenarios. A missing
// scenario set degrades to the LIGHT fallback.
func (c proCalculator) ScaleProjection(f FinancialInputs, scenarios *ScenarioSet) ScaleProjection {
	if scenarios == nil {
		cpoc := c.CostOfProof(f)
		return fallbackProjection(cpoc, Value(f, cpoc).TotalValue)
	}
	s := scenarios.Normalize()
	cost := ThreePoint{
		Pessimistic: s.Pessimistic.BaseCost,
		Realistic:   s.Realistic.BaseCost,
		Optimistic:  s.Optimistic.BaseCost,
	}
	value := ThreePoint{
		Pessimistic: s.Pessimistic.AnnualValue(),
		Realistic:   s.Realistic.AnnualValue(),
		Optimistic:  s.Optimistic.AnnualValue(),
	}
	return newScaleProjection(cost, value, false)
}

// AnnualValue is the yearly saving produced by the scenario.
func (s Scenario) AnnualValue() float64 {
	s = s.Normalize()
	return mathutil.Finite(s.UnitSavings * s.Volume * constants.MonthsPerYear)
}
