package engine

import (
	"fmt"

	"github.com/metria/innovation-accounting/pkg/mathutil"
)

const (
	// pointsPerAnswer scales a 0-8 answer sum to 0-100.
	pointsPerAnswer = 100.0 / SurveyLength

	// NeutralConfidence is reported for LIGHT projects whose survey was not
	// answered.
	NeutralConfidence = 50.0

	// riskPenaltyPoints is deducted from the composite score per penalized risk.
	riskPenaltyPoints = 5.0
)

// surveySum validates the survey shape and adds up the answers. Each answer is
// clamped to [0, 1].
func surveySum(survey []Response) (float64, error) {
	if len(survey) != SurveyLength {
		return 0, fmt.Errorf("%w, got %d", ErrSurveyLength, len(survey))
	}
	var sum float64
	for _, r := range survey {
		sum += mathutil.Clamp(float64(r), float64(ResponseNo), float64(ResponseYes))
	}
	return sum, nil
}

// ConfidenceIndex for LIGHT projects. The survey is usually not collected, so
// an absent or all-"No" survey yields the neutral default.
func (lightCalculator) ConfidenceIndex(survey []Response) (float64, error) {
	if len(survey) == 0 {
		return NeutralConfidence, nil
	}
	sum, err := surveySum(survey)
	if err != nil {
		return 0, err
	}
	if sum == 0 {
		return NeutralConfidence, nil
	}
	return sum * pointsPerAnswer, nil
}

// ConfidenceIndex for PRO projects. The survey is always collected, so every
// sum, including zero, is taken at face value.
func (proCalculator) ConfidenceIndex(survey []Response) (float64, error) {
	if len(survey) == 0 {
		return 0, nil
	}
	sum, err := surveySum(survey)
	if err != nil {
		return 0, err
	}
	return sum * pointsPerAnswer, nil
}

// RiskPenalty for LIGHT projects: every checked checklist item counts, i.e.
// every record above Low.
func (lightCalculator) RiskPenalty(risks []Risk) float64 {
	var n int
	for _, r := range risks {
		if r.Level != RiskLow {
			n++
		}
	}
	return float64(n) * riskPenaltyPoints
}

// RiskPenalty for PRO projects: only High records count.
func (proCalculator) RiskPenalty(risks []Risk) float64 {
	var n int
	for _, r := range risks {
		if r.Level == RiskHigh {
			n++
		}
	}
	return float64(n) * riskPenaltyPoints
}
