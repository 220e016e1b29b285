package narrative

import (
	"fmt"
	"strings"

	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/format"
)

// BuildPrompt renders a project's computed metrics into the model prompt.
// Only display values are included; the prompt never feeds back into the
// metrics.
func BuildPrompt(p *project.Project) string {
	m := p.Financials.ComputedMetrics
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", p.Name)
	fmt.Fprintf(&b, "Mode: %s\n", p.Mode)
	writeOptional(&b, "Area", p.Area)
	writeOptional(&b, "Value type", string(p.ValueType))
	writeOptional(&b, "Main goal", p.MainGoal)
	writeOptional(&b, "Key indicator", p.KeyIndicator)
	writeOptional(&b, "Business impact", p.BusinessImpact)

	b.WriteString("\nMetrics:\n")
	fmt.Fprintf(&b, "- Cost of proof: %s\n", format.NumericCurrency(m.CostOfProof))
	fmt.Fprintf(&b, "- Economic gain at proof: %s\n", format.NumericCurrency(m.EconomicGainAtProof))
	fmt.Fprintf(&b, "- ROI: %s (%s)\n", format.Percent(m.ROI), format.Multiple(m.ROIMultiple))
	fmt.Fprintf(&b, "- Weighted scale cost: %s\n", format.NumericCurrency(m.ScaleCost))
	fmt.Fprintf(&b, "- Weighted scale value: %s\n", format.NumericCurrency(m.ScaleValue))
	fmt.Fprintf(&b, "- Scale economic gain: %s\n", format.NumericCurrency(m.ScaleEconomicGain))
	fmt.Fprintf(&b, "- Benefit-cost ratio: %s\n", format.Multiple(m.BenefitCostRatio))
	fmt.Fprintf(&b, "- Confidence index: %s\n", format.Percent(m.ConfidenceIndex))
	fmt.Fprintf(&b, "- Composite score: %s\n", format.Percent(m.CompositeScore))

	if len(p.Risks) > 0 {
		b.WriteString("\nRisks:\n")
		for _, r := range p.Risks {
			fmt.Fprintf(&b, "- %s (%s)\n", r.Category, r.Level)
		}
	}

	b.WriteString("\nReturn a JSON object with the string fields \"strategic\", \"market\", \"risks\" and \"actionPlan\". ")
	b.WriteString("Keep each field to one short paragraph.")
	return b.String()
}

func writeOptional(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
