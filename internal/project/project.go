// Package project holds the project entity and the save workflow that turns a
// wizard draft into a persisted, fully computed project record.
package project

import (
	"context"
	"errors"
	"time"

	"github.com/metria/innovation-accounting/internal/engine"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ValueType is the kind of economic value the project pursues.
type ValueType string

const (
	ValueCostReduction   ValueType = "cost_reduction"
	ValueRevenueIncrease ValueType = "revenue_increase"
	ValueNewRevenue      ValueType = "new_revenue"
)

var (
	// ErrNotFound is returned by stores when no project has the requested id.
	ErrNotFound = errors.New("project not found")

	// ErrModeChange is returned when a save would change an existing
	// project's mode.
	ErrModeChange = errors.New("project mode cannot change after creation")

	// ErrOwnerChange is returned when a save names an existing project that
	// belongs to another user.
	ErrOwnerChange = errors.New("project belongs to another user")

	// ErrStale is returned when a conditional write finds the record changed
	// since it was read.
	ErrStale = errors.New("project changed since it was read")
)

// Financials is the persisted financial block: the inputs and the computed
// metrics flattened into one object.
type Financials struct {
	engine.FinancialInputs `yaml:",inline"`
	engine.ComputedMetrics `yaml:",inline"`
}

// Analysis is the optional AI commentary attached to a project.
type Analysis struct {
	Strategic   string    `json:"strategic" yaml:"strategic"`
	Market      string    `json:"market" yaml:"market"`
	Risks       string    `json:"risks" yaml:"risks"`
	ActionPlan  string    `json:"actionPlan" yaml:"actionPlan"`
	Model       string    `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
}

// Project is a saved innovation project.
type Project struct {
	ID        string      `json:"id" yaml:"id"`
	UserID    string      `json:"userId" yaml:"userId"`
	Name      string      `json:"name" yaml:"name"`
	CreatedAt time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" yaml:"updatedAt"`
	Mode      engine.Mode `json:"mode" yaml:"mode"`
	Status    Status      `json:"status" yaml:"status"`

	Area           string    `json:"area,omitempty" yaml:"area,omitempty"`
	Responsible    string    `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	ValueType      ValueType `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	MainGoal       string    `json:"mainGoal,omitempty" yaml:"mainGoal,omitempty"`
	KeyIndicator   string    `json:"keyIndicator,omitempty" yaml:"keyIndicator,omitempty"`
	BusinessImpact string    `json:"businessImpact,omitempty" yaml:"businessImpact,omitempty"`
	Comments       string    `json:"comments,omitempty" yaml:"comments,omitempty"`

	Financials Financials          `json:"financials" yaml:"financials"`
	Scenarios  *engine.ScenarioSet `json:"proScenarios,omitempty" yaml:"proScenarios,omitempty"`

	// Risks, ICVAnswers, ICVScore, Score and ROI duplicate engine output at
	// the top level for simpler display.
	Risks      []engine.Risk     `json:"risks" yaml:"risks"`
	ICVAnswers []engine.Response `json:"icvAnswers,omitempty" yaml:"icvAnswers,omitempty"`
	ICVScore   float64           `json:"icvScore" yaml:"icvScore"`
	Score      float64           `json:"score" yaml:"score"`
	ROI        float64           `json:"roi" yaml:"roi"`

	Analysis *Analysis `json:"aiAnalysis,omitempty" yaml:"aiAnalysis,omitempty"`
}

// Input rebuilds the engine snapshot from a stored project.
func (p *Project) Input() engine.Input {
	return engine.Input{
		Mode:       p.Mode,
		Financials: p.Financials.FinancialInputs,
		Scenarios:  p.Scenarios,
		Risks:      p.Risks,
		Survey:     p.ICVAnswers,
	}
}

// Store persists whole project records. Save replaces any record with the
// same id. Update replaces it only while its UpdatedAt still equals
// ifUpdatedAt and returns ErrStale otherwise.
type Store interface {
	Save(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project, ifUpdatedAt time.Time) error
	Get(ctx context.Context, id string) (*Project, error)
	ListByUser(ctx context.Context, userID string) ([]*Project, error)
	ListAll(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error
}

// Narrator produces the optional AI commentary for a computed project.
type Narrator interface {
	Narrate(ctx context.Context, p *Project) (*Analysis, error)
}
