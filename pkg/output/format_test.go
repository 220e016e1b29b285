package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/portfolio"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *project.Report {
	return &project.Report{
		ProjectID: "p-1",
		Name:      "Invoice OCR",
		Mode:      engine.ModeLight,
		Metrics: engine.ComputedMetrics{
			CostOfProof:         6000,
			EconomicGainAtProof: -2400,
			ROI:                 -40,
			ROIMultiple:         0.6,
			CompositeScore:      60,
		},
		MonthlyGain:        400,
		PaybackMonths:      15,
		PaybackKnown:       true,
		SuccessProbability: 51,
		Band:               project.BandMedium,
		GainScenarios:      engine.ThreePoint{Pessimistic: -1680, Realistic: -2400, Optimistic: -3120},
		Risks:              []engine.Risk{{Category: "Lack of data", Level: engine.RiskHigh}},
		Warnings:           []string{"something to check"},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, []*project.Report{sampleReport()}, "R$"))
	out := buf.String()

	assert.Contains(t, out, "--- Report for project Invoice OCR (LIGHT, p-1) ---")
	assert.Contains(t, out, "R$ 6,000.00")
	assert.Contains(t, out, "-R$ 2,400.00")
	assert.Contains(t, out, "15.0 months")
	assert.Contains(t, out, "51% (medium)")
	assert.Contains(t, out, "risk: Lack of data (High)")
	assert.Contains(t, out, "warning: something to check")
	assert.NotContains(t, out, "Strategic:")
}

func TestPrettyFormatAnalysis(t *testing.T) {
	r := sampleReport()
	r.PaybackKnown = false
	r.Analysis = &project.Analysis{Strategic: "fits", Market: "small", Risks: "data", ActionPlan: "pilot"}
	var buf bytes.Buffer
	require.NoError(t, PrettyFormat(&buf, []*project.Report{r, sampleReport()}, "$"))
	out := buf.String()
	assert.Contains(t, out, "∞")
	assert.Contains(t, out, "Action plan: pilot")
	assert.Equal(t, 2, strings.Count(out, "--- Report for project"))
}

func TestCsvFormat(t *testing.T) {
	infinite := sampleReport()
	infinite.ProjectID = "p-2"
	infinite.Name = "Name, with comma"
	infinite.PaybackKnown = false

	var buf bytes.Buffer
	require.NoError(t, CsvFormat(&buf, []*project.Report{sampleReport(), infinite}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, []string{"p-1", "Invoice OCR", "LIGHT", "6000.00", "-2400.00", "-40.00", "0.60"}, records[1][:7])
	assert.Equal(t, "15.00", records[1][14])
	assert.Equal(t, "Name, with comma", records[2][1])
	assert.Equal(t, "", records[2][14])
	assert.Equal(t, "false", records[2][16])
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormat(&buf, sampleReport().Metrics))

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 6000.0, decoded["costOfProof"])
	assert.Equal(t, -40.0, decoded["roi"])
}

func TestPrettyMetricsWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyMetrics(&buf, engine.ComputedMetrics{CompositeScore: 80}, []string{"no scenarios"}, "R$"))
	assert.Contains(t, buf.String(), "80%")
	assert.Contains(t, buf.String(), "warning: no scenarios")
}

func TestPrettySummary(t *testing.T) {
	s := portfolio.Summary{
		Projects:         2,
		LightProjects:    1,
		ProProjects:      1,
		TotalCostOfProof: 12500,
		Bands:            map[project.ScoreBand]int{project.BandHigh: 1, project.BandLow: 1, project.BandMedium: 0},
		Users:            []portfolio.UserCount{{UserID: "ana", Projects: 2}},
	}
	var buf bytes.Buffer
	require.NoError(t, PrettySummary(&buf, s, "R$"))
	out := buf.String()
	assert.Contains(t, out, "Projects: 2 (LIGHT 1, PRO 1)")
	assert.Contains(t, out, "R$ 12,500.00")
	assert.Contains(t, out, "band high: 1")
	assert.Contains(t, out, "user ana: 2")
}

func TestCsvMetrics(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CsvMetrics(&buf, sampleReport().Metrics))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "costOfProof", records[0][0])
	assert.Equal(t, "6000.00", records[1][0])
	assert.Equal(t, "-40.00", records[1][9])
}
