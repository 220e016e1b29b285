// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/project"
)

// ProjectOption customizes a test project.
type ProjectOption func(*project.Project)

// NewTestProject returns a stored-looking LIGHT project with sensible
// defaults: owner "ana", created 2026-01-01 UTC and a modest metrics block.
func NewTestProject(id string, opts ...ProjectOption) *project.Project {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &project.Project{
		ID:        id,
		UserID:    "ana",
		Name:      "Project " + id,
		CreatedAt: created,
		UpdatedAt: created,
		Mode:      engine.ModeLight,
		Status:    project.StatusActive,
		Financials: project.Financials{
			FinancialInputs: engine.FinancialInputs{DirectCost: 10000, MonthlySavings: 800, LifespanMonths: 12},
			ComputedMetrics: engine.ComputedMetrics{CostOfProof: 10000, EconomicGainAtProof: -400, CompositeScore: 60},
		},
		Risks:    []engine.Risk{},
		ICVScore: 50,
		Score:    60,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithUser sets the owner.
func WithUser(userID string) ProjectOption {
	return func(p *project.Project) { p.UserID = userID }
}

// WithMode sets the mode.
func WithMode(mode engine.Mode) ProjectOption {
	return func(p *project.Project) { p.Mode = mode }
}

// WithCreated sets both timestamps.
func WithCreated(t time.Time) ProjectOption {
	return func(p *project.Project) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

// WithRisks sets the risk records.
func WithRisks(risks ...engine.Risk) ProjectOption {
	return func(p *project.Project) { p.Risks = risks }
}

// WithOutcome sets the cost of proof, the composite score and the ROI in
// both the metrics block and the top-level siblings.
func WithOutcome(costOfProof, score, roi float64) ProjectOption {
	return func(p *project.Project) {
		p.Financials.CostOfProof = costOfProof
		p.Financials.CompositeScore = score
		p.Financials.ROI = roi
		p.Score = score
		p.ROI = roi
	}
}

// FindProject finds a project by id in the slice.
// Returns nil if it is not present.
func FindProject(projects []*project.Project, id string) *project.Project {
	for _, p := range projects {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}
