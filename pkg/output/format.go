// Package output provides utilities for formatting and displaying project results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/portfolio"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrettyMetrics outputs the computed metrics as a human-readable table.
func PrettyMetrics(w io.Writer, m engine.ComputedMetrics, warnings []string, symbol string) error {
	p := message.NewPrinter(language.English)
	rows := []struct {
		label string
		value string
	}{
		{"Cost of proof", format.Currency(symbol, m.CostOfProof)},
		{"Economic gain at proof", format.Currency(symbol, m.EconomicGainAtProof)},
		{"ROI", format.Percent(m.ROI)},
		{"ROI multiple", format.Multiple(m.ROIMultiple)},
		{"Scale cost", format.Currency(symbol, m.ScaleCost)},
		{"Scale value", format.Currency(symbol, m.ScaleValue)},
		{"Scale economic gain", format.Currency(symbol, m.ScaleEconomicGain)},
		{"Benefit-cost ratio", format.Multiple(m.BenefitCostRatio)},
		{"Confidence index", format.Percent(m.ConfidenceIndex)},
		{"Risk penalty", format.Percent(m.RiskPenalty)},
		{"Composite score", format.Percent(m.CompositeScore)},
	}
	for _, row := range rows {
		if _, err := p.Fprintf(w, "%-24s | %s\n", row.label, row.value); err != nil {
			return err
		}
	}
	for _, warning := range warnings {
		if _, err := p.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

// PrettyFormat outputs a human-readable report for each project.
func PrettyFormat(w io.Writer, reports []*project.Report, symbol string) error {
	p := message.NewPrinter(language.English)
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		_, _ = p.Fprintf(w, "--- Report for project %s (%s, %s) ---\n", r.Name, r.Mode, r.ProjectID)
		if err := PrettyMetrics(w, r.Metrics, nil, symbol); err != nil {
			return err
		}
		_, _ = p.Fprintf(w, "%-24s | %s\n", "Monthly gain", format.Currency(symbol, r.MonthlyGain))
		_, _ = p.Fprintf(w, "%-24s | %s\n", "Payback", format.Months(r.PaybackMonths, r.PaybackKnown))
		_, _ = p.Fprintf(w, "%-24s | %s (%s)\n", "Success probability", format.Percent(r.SuccessProbability), r.Band)
		_, _ = p.Fprintf(w, "%-24s | %t\n", "Viable", r.Viable)
		_, _ = p.Fprintf(w, "Gain scenarios           | %s / %s / %s\n",
			format.Currency(symbol, r.GainScenarios.Pessimistic),
			format.Currency(symbol, r.GainScenarios.Realistic),
			format.Currency(symbol, r.GainScenarios.Optimistic))
		for _, risk := range r.Risks {
			_, _ = p.Fprintf(w, "risk: %s (%s)\n", risk.Category, risk.Level)
		}
		for _, warning := range r.Warnings {
			_, _ = p.Fprintf(w, "warning: %s\n", warning)
		}
		if r.Analysis != nil {
			_, _ = p.Fprintf(w, "Strategic: %s\nMarket: %s\nRisks: %s\nAction plan: %s\n",
				r.Analysis.Strategic, r.Analysis.Market, r.Analysis.Risks, r.Analysis.ActionPlan)
		}
	}
	return nil
}

// CsvFormat outputs one row per project in comma-separated value format.
func CsvFormat(w io.Writer, reports []*project.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "name", "mode", "costOfProof", "economicGainAtProof", "roi", "roiMultiple",
		"scaleCost", "scaleValue", "scaleEconomicGain", "benefitCostRatio",
		"confidenceIndex", "riskPenalty", "compositeScore", "paybackMonths", "band", "viable",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range reports {
		payback := ""
		if r.PaybackKnown {
			payback = money(r.PaybackMonths)
		}
		m := r.Metrics
		row := []string{
			r.ProjectID, r.Name, string(r.Mode),
			money(m.CostOfProof), money(m.EconomicGainAtProof), money(m.ROI), money(m.ROIMultiple),
			money(m.ScaleCost), money(m.ScaleValue), money(m.ScaleEconomicGain), money(m.BenefitCostRatio),
			money(m.ConfidenceIndex), money(m.RiskPenalty), money(m.CompositeScore),
			payback, string(r.Band), strconv.FormatBool(r.Viable),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvMetrics outputs a single metrics record with a header row.
func CsvMetrics(w io.Writer, m engine.ComputedMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"costOfProof", "economicGainAtProof", "scaleCost", "scaleValue", "scaleEconomicGain",
		"benefitCostRatio", "confidenceIndex", "riskPenalty", "compositeScore", "roi", "roiMultiple",
	}); err != nil {
		return err
	}
	if err := cw.Write([]string{
		money(m.CostOfProof), money(m.EconomicGainAtProof), money(m.ScaleCost), money(m.ScaleValue),
		money(m.ScaleEconomicGain), money(m.BenefitCostRatio), money(m.ConfidenceIndex),
		money(m.RiskPenalty), money(m.CompositeScore), money(m.ROI), money(m.ROIMultiple),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// PrettySummary outputs the portfolio overview.
func PrettySummary(w io.Writer, s portfolio.Summary, symbol string) error {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "Projects: %d (LIGHT %d, PRO %d), viable %d\n", s.Projects, s.LightProjects, s.ProProjects, s.Viable)
	_, _ = p.Fprintf(w, "Total cost of proof: %s\n", format.Currency(symbol, s.TotalCostOfProof))
	_, _ = p.Fprintf(w, "Total scale gain: %s\n", format.Currency(symbol, s.TotalScaleGain))
	_, _ = p.Fprintf(w, "Average score: %.2f, average ICV: %.2f\n", s.AverageScore, s.AverageICV)
	bands := make([]string, 0, len(s.Bands))
	for band := range s.Bands {
		bands = append(bands, string(band))
	}
	sort.Strings(bands)
	for _, band := range bands {
		_, _ = p.Fprintf(w, "band %s: %d\n", band, s.Bands[project.ScoreBand(band)])
	}
	for _, u := range s.Users {
		if _, err := p.Fprintf(w, "user %s: %d\n", u.UserID, u.Projects); err != nil {
			return err
		}
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
