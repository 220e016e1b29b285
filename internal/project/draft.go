package project

import (
	"github.com/go-playground/validator/v10"
	"github.com/metria/innovation-accounting/internal/engine"
)

// surveyAnswerTag restricts confidence survey answers to No, Partial or Yes.
const surveyAnswerTag = "survey_answer"

func validSurveyAnswer(fl validator.FieldLevel) bool {
	switch engine.Response(fl.Field().Float()) {
	case engine.ResponseNo, engine.ResponsePartial, engine.ResponseYes:
		return true
	}
	return false
}

// Checklist is the LIGHT wizard's fixed risk checklist.
type Checklist struct {
	ITDependency       bool `json:"itDependency" yaml:"itDependency"`
	DataLack           bool `json:"dataLack" yaml:"dataLack"`
	LowCapability      bool `json:"lowCapability" yaml:"lowCapability"`
	BudgetLack         bool `json:"budgetLack" yaml:"budgetLack"`
	InternalResistance bool `json:"internalResistance" yaml:"internalResistance"`
}

// Risks maps each checked item to its fixed category and level.
func (c Checklist) Risks() []engine.Risk {
	var risks []engine.Risk
	if c.ITDependency {
		risks = append(risks, engine.Risk{Category: "IT dependency", Level: engine.RiskHigh})
	}
	if c.DataLack {
		risks = append(risks, engine.Risk{Category: "Lack of data", Level: engine.RiskHigh})
	}
	if c.LowCapability {
		risks = append(risks, engine.Risk{Category: "Low capability", Level: engine.RiskMedium})
	}
	if c.BudgetLack {
		risks = append(risks, engine.Risk{Category: "Lack of budget", Level: engine.RiskHigh})
	}
	if c.InternalResistance {
		risks = append(risks, engine.Risk{Category: "Internal resistance", Level: engine.RiskMedium})
	}
	return risks
}

// ProRiskCategories is the extended category list a PRO project rates.
var ProRiskCategories = []string{
	"Strategic alignment",
	"Technical incompatibility",
	"Legal/regulatory barriers",
	"IT priority",
	"Stakeholder support",
	"Reputational risk",
	"Startup maturity",
	"ESG impact",
	"HR availability",
	"Execution risk",
}

// Draft is what the wizard submits on save. An empty ID creates a project.
type Draft struct {
	ID     string      `json:"id,omitempty" yaml:"id,omitempty"`
	UserID string      `json:"userId" yaml:"userId" validate:"required"`
	Name   string      `json:"name" yaml:"name" validate:"max=200"`
	Mode   engine.Mode `json:"mode" yaml:"mode" validate:"required,oneof=LIGHT PRO"`
	Status Status      `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=draft active archived"`

	Area           string    `json:"area,omitempty" yaml:"area,omitempty"`
	Responsible    string    `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	ValueType      ValueType `json:"valueType,omitempty" yaml:"valueType,omitempty" validate:"omitempty,oneof=cost_reduction revenue_increase new_revenue"`
	MainGoal       string    `json:"mainGoal,omitempty" yaml:"mainGoal,omitempty"`
	KeyIndicator   string    `json:"keyIndicator,omitempty" yaml:"keyIndicator,omitempty"`
	BusinessImpact string    `json:"businessImpact,omitempty" yaml:"businessImpact,omitempty"`
	Comments       string    `json:"comments,omitempty" yaml:"comments,omitempty"`

	Financials engine.FinancialInputs `json:"financials" yaml:"financials"`
	Scenarios  *engine.ScenarioSet    `json:"proScenarios,omitempty" yaml:"proScenarios,omitempty"`
	Risks      []engine.Risk          `json:"risks,omitempty" yaml:"risks,omitempty" validate:"dive"`
	Checklist  Checklist              `json:"checklist" yaml:"checklist"`
	ICVAnswers []engine.Response      `json:"icvAnswers,omitempty" yaml:"icvAnswers,omitempty" validate:"omitempty,dive,survey_answer"`
}

// Input builds the engine snapshot for the draft. LIGHT drafts contribute
// their checklist as risk records; PRO drafts drop the LIGHT-only checklist
// and LIGHT drafts drop the PRO-only scenarios.
func (d Draft) Input() engine.Input {
	in := engine.Input{
		Mode:       d.Mode,
		Financials: d.Financials.Normalize(),
		Survey:     d.ICVAnswers,
	}
	risks := append([]engine.Risk(nil), d.Risks...)
	switch d.Mode {
	case engine.ModeLight:
		in.Risks = append(risks, d.Checklist.Risks()...)
	case engine.ModePro:
		in.Risks = risks
		if d.Scenarios != nil {
			s := d.Scenarios.Normalize()
			in.Scenarios = &s
		}
	}
	return in
}
