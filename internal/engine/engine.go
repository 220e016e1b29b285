package engine

// ComputeProjectMetrics runs the full pipeline for one project snapshot. The
// only error is a programmer error: an unknown mode or a malformed survey.
// The result never contains NaN or infinities.
func ComputeProjectMetrics(in Input) (ComputedMetrics, error) {
	c, err := For(in.Mode)
	if err != nil {
		return ComputedMetrics{}, err
	}
	confidence, err := c.ConfidenceIndex(in.Survey)
	if err != nil {
		return ComputedMetrics{}, err
	}

	f := in.Financials.Normalize()
	cpoc := c.CostOfProof(f)
	value := Value(f, cpoc)
	scale := c.ScaleProjection(f, in.Scenarios)
	penalty := c.RiskPenalty(in.Risks)

	m := ComputedMetrics{
		CostOfProof:         cpoc,
		EconomicGainAtProof: value.EconomicGain,
		ScaleCost:           scale.ScaleCost,
		ScaleValue:          scale.ScaleValue,
		ScaleEconomicGain:   scale.ScaleEconomicGain,
		BenefitCostRatio:    scale.BenefitCostRatio,
		ConfidenceIndex:     confidence,
		RiskPenalty:         penalty,
		CompositeScore:      CompositeScore(c, cpoc, f.MonthlySavings, penalty),
		ROI:                 PercentROI(value.EconomicGain, cpoc),
	}
	m.ROIMultiple = c.roiMultiple(m)
	return m, nil
}

// Warnings lists the silent degradations ComputeProjectMetrics will apply to
// in. It never fails; an invalid input yields no warnings.
func Warnings(in Input) []string {
	var warnings []string
	if in.Mode == ModePro && in.Scenarios == nil {
		warnings = append(warnings, "PRO project has no scenario set; scale projection uses the fixed-percentage fallback")
	}
	if in.Mode == ModePro && len(in.Survey) == 0 {
		warnings = append(warnings, "PRO project has no confidence survey; confidence index is 0")
	}
	return warnings
}
