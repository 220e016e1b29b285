package project

import (
	"fmt"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/pkg/mathutil"
)

// ScoreBand buckets a composite score for display.
type ScoreBand string

const (
	BandHigh   ScoreBand = "high"
	BandMedium ScoreBand = "medium"
	BandLow    ScoreBand = "low"
)

const (
	highBandFloor   = 70.0
	mediumBandFloor = 40.0

	// successProbabilityFactor turns the composite score into the displayed
	// success probability. It is a heuristic, not a simulation.
	successProbabilityFactor = 0.85

	pessimisticGainFactor = 0.7
	optimisticGainFactor  = 1.3
)

// Band returns the display band for score.
func Band(score float64) ScoreBand {
	switch {
	case score > highBandFloor:
		return BandHigh
	case score > mediumBandFloor:
		return BandMedium
	}
	return BandLow
}

// Report is everything the report view shows for a project.
type Report struct {
	ProjectID string                 `json:"projectId"`
	Name      string                 `json:"name"`
	Mode      engine.Mode            `json:"mode"`
	Metrics   engine.ComputedMetrics `json:"metrics"`

	MonthlyGain float64 `json:"monthlyGain"`
	// PaybackMonths is only meaningful when PaybackKnown; without a monthly
	// gain the payback is infinite.
	PaybackMonths      float64   `json:"paybackMonths"`
	PaybackKnown       bool      `json:"paybackKnown"`
	SuccessProbability float64   `json:"successProbability"`
	Band               ScoreBand `json:"band"`
	Viable             bool      `json:"viable"`

	GainScenarios engine.ThreePoint      `json:"gainScenarios"`
	Scale         engine.ScaleProjection `json:"scale"`

	Risks    []engine.Risk `json:"risks"`
	Analysis *Analysis     `json:"aiAnalysis,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// BuildReport derives the report view from a stored project.
func BuildReport(p *Project) (*Report, error) {
	c, err := engine.For(p.Mode)
	if err != nil {
		return nil, fmt.Errorf("building report for %s: %w", p.ID, err)
	}
	in := p.Input()
	metrics := p.Financials.ComputedMetrics
	value := engine.Value(in.Financials, metrics.CostOfProof)

	r := &Report{
		ProjectID:          p.ID,
		Name:               p.Name,
		Mode:               p.Mode,
		Metrics:            metrics,
		MonthlyGain:        value.MonthlyGain,
		SuccessProbability: mathutil.Finite(p.Score * successProbabilityFactor),
		Band:               Band(p.Score),
		Viable:             p.ROI > 0,
		GainScenarios: engine.ThreePoint{
			Pessimistic: metrics.EconomicGainAtProof * pessimisticGainFactor,
			Realistic:   metrics.EconomicGainAtProof,
			Optimistic:  metrics.EconomicGainAtProof * optimisticGainFactor,
		},
		Scale:    c.ScaleProjection(in.Financials, in.Scenarios),
		Risks:    p.Risks,
		Analysis: p.Analysis,
		Warnings: engine.Warnings(in),
	}
	if value.MonthlyGain > 0 {
		r.PaybackMonths = mathutil.SafeDivide(metrics.CostOfProof, value.MonthlyGain)
		r.PaybackKnown = true
	}
	return r, nil
}
