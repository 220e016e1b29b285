package engine

import "fmt"

// Calculator is the mode-specific half of the engine. LIGHT and PRO differ in
// how the cost of proof is assembled, where the scale scenarios come from, how
// an unanswered survey is scored and which risks are penalized.
type Calculator interface {
	Mode() Mode
	CostOfProof(f FinancialInputs) float64
	ScaleProjection(f FinancialInputs, scenarios *ScenarioSet) ScaleProjection
	ConfidenceIndex(survey []Response) (float64, error)
	RiskPenalty(risks []Risk) float64

	modeBonus() float64
	roiMultiple(m ComputedMetrics) float64
}

// For returns the calculator for mode.
func For(mode Mode) (Calculator, error) {
	switch mode {
	case ModeLight:
		return lightCalculator{}, nil
	case ModePro:
		return proCalculator{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

type lightCalculator struct{}

func (lightCalculator) Mode() Mode { return ModeLight }

type proCalculator struct{}

func (proCalculator) Mode() Mode { return ModePro }
