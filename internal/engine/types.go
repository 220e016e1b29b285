// Package engine derives the viability metrics of an innovation project
// (cost of proof, economic gain, weighted scale projection, confidence index,
// composite score and ROI) from the raw inputs captured by the project wizard.
// Every function in this package is pure: no I/O, no shared state.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the formula variant used for a project. It is fixed when the
// project is created.
type Mode string

const (
	ModeLight Mode = "LIGHT"
	ModePro   Mode = "PRO"
)

// ParseMode accepts the mode case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeLight:
		return ModeLight, nil
	case ModePro:
		return ModePro, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// UnmarshalText lets decoded drafts use any spelling ParseMode accepts.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

var (
	// ErrUnknownMode is returned for any mode other than LIGHT or PRO.
	ErrUnknownMode = errors.New("unknown project mode")

	// ErrSurveyLength is returned when a confidence survey is present but does
	// not hold exactly SurveyLength answers.
	ErrSurveyLength = errors.New("confidence survey must have exactly 8 answers")
)

// FinancialInputs holds every user-entered financial driver of a project.
// Absent fields are zero.
type FinancialInputs struct {
	// Cost drivers
	DirectCost        float64 `json:"directCost" yaml:"directCost"`
	ExternalFees      float64 `json:"externalFees" yaml:"externalFees"`
	HourlyRate        float64 `json:"hourlyRate" yaml:"hourlyRate"`
	HoursPerMonth     float64 `json:"hoursPerMonth" yaml:"hoursPerMonth"`
	TeamSize          float64 `json:"teamSize" yaml:"teamSize"`
	MonthsToImplement float64 `json:"monthsToImplement" yaml:"monthsToImplement"`

	// PRO detailed cost drivers
	StartupCost   float64 `json:"startupCost" yaml:"startupCost"`
	Licenses      float64 `json:"licenses" yaml:"licenses"`
	ServicesCost  float64 `json:"servicesCost" yaml:"servicesCost"`
	OtherExpenses float64 `json:"otherExpenses" yaml:"otherExpenses"`

	// Value drivers. DiscountRate is carried but not applied: projections
	// are straight-line.
	MonthlySavings float64 `json:"monthlySavings" yaml:"monthlySavings"`
	MonthlyRevenue float64 `json:"monthlyRevenue" yaml:"monthlyRevenue"`
	LifespanMonths float64 `json:"lifespanMonths" yaml:"lifespanMonths"`
	DiscountRate   float64 `json:"discountRate" yaml:"discountRate"`

	// Unit economics helper
	UnitCostCurrent float64 `json:"unitCostCurrent" yaml:"unitCostCurrent"`
	UnitCostNew     float64 `json:"unitCostNew" yaml:"unitCostNew"`
	MonthlyVolume   float64 `json:"monthlyVolume" yaml:"monthlyVolume"`
}

// Scenario is one point of a PRO three-point estimate.
type Scenario struct {
	BaseCost    float64 `json:"baseCost" yaml:"baseCost"`
	Volume      float64 `json:"volume" yaml:"volume"`
	UnitSavings float64 `json:"unitSavings" yaml:"unitSavings"`
}

// ScenarioSet is the PRO three-point estimate used for the scale projection.
type ScenarioSet struct {
	Pessimistic Scenario `json:"pessimistic" yaml:"pessimistic"`
	Realistic   Scenario `json:"realistic" yaml:"realistic"`
	Optimistic  Scenario `json:"optimistic" yaml:"optimistic"`
}

// RiskLevel is the severity of a risk record.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel accepts the English level names as well as the Portuguese
// labels stored by earlier versions of the application.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "baixo":
		return RiskLow, nil
	case "medium", "médio", "medio":
		return RiskMedium, nil
	case "high", "alto":
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// UnmarshalText lets decoded records use any spelling ParseRiskLevel accepts.
func (l *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Risk is a single categorized risk flag.
type Risk struct {
	Category string    `json:"category" yaml:"category" validate:"required"`
	Level    RiskLevel `json:"level" yaml:"level" validate:"required,oneof=Low Medium High"`
}

// Response is one answer of the confidence survey.
type Response float64

const (
	ResponseNo      Response = 0
	ResponsePartial Response = 0.5
	ResponseYes     Response = 1
)

// SurveyLength is the fixed number of questions in the confidence survey.
const SurveyLength = 8

// SurveyQuestions are the evidence-quality questions, in answer order.
var SurveyQuestions = [SurveyLength]string{
	"Is the data used to build the scenarios reliable?",
	"Were all critical variables and potential costs considered?",
	"Do the main identified risks have a mitigation?",
	"Do the scenarios reflect the complexity and uncertainty involved?",
	"Did the solution reach the proof-of-concept goals with consistent results?",
	"Can the solution be replicated at scale without loss of quality?",
	"Does the startup or team have the capacity to sustain the scale?",
	"Is the project integrated and are the stakeholders aligned?",
}

// Input is a complete snapshot of everything the engine needs for one
// computation. Scenarios is only read in PRO mode; Survey may be nil.
type Input struct {
	Mode       Mode
	Financials FinancialInputs
	Scenarios  *ScenarioSet
	Risks      []Risk
	Survey     []Response
}

// ComputedMetrics is the derived output attached to a project on save. Every
// field is always a finite number.
type ComputedMetrics struct {
	CostOfProof         float64 `json:"costOfProof" yaml:"costOfProof"`
	EconomicGainAtProof float64 `json:"economicGainAtProof" yaml:"economicGainAtProof"`

	ScaleCost         float64 `json:"scaleCost" yaml:"scaleCost"`
	ScaleValue        float64 `json:"scaleValue" yaml:"scaleValue"`
	ScaleEconomicGain float64 `json:"scaleEconomicGain" yaml:"scaleEconomicGain"`
	BenefitCostRatio  float64 `json:"benefitCostRatio" yaml:"benefitCostRatio"`

	ConfidenceIndex float64 `json:"confidenceIndex" yaml:"confidenceIndex"`
	RiskPenalty     float64 `json:"riskPenalty" yaml:"riskPenalty"`
	CompositeScore  float64 `json:"compositeScore" yaml:"compositeScore"`

	// ROI is the legacy percentage-growth figure; ROIMultiple is the multiple
	// shown on the report card for the project's mode.
	ROI         float64 `json:"roi" yaml:"roi"`
	ROIMultiple float64 `json:"roiMultiple" yaml:"roiMultiple"`
}
