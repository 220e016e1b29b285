package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/metria/innovation-accounting/internal/engine"
	"go.uber.org/zap"
)

// DefaultName is used for projects saved without a name.
const DefaultName = "Untitled project"

var (
	// ErrInvalid wraps every draft validation failure.
	ErrInvalid = errors.New("invalid project")

	// ErrNoNarrator is returned by AttachNarrative when no generator is
	// configured.
	ErrNoNarrator = errors.New("narrative generation is not configured")
)

// Service is the save workflow: it validates drafts, runs the engine and
// hands complete records to the store. The engine never touches the store.
type Service struct {
	logger   *zap.Logger
	store    Store
	narrator Narrator
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithNarrator enables AI commentary.
func WithNarrator(n Narrator) Option {
	return func(s *Service) { s.narrator = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides project id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService builds a Service over store.
func NewService(logger *zap.Logger, store Store, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		logger:   logger,
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	// Registration only fails for an empty tag.
	_ = s.validate.RegisterValidation(surveyAnswerTag, validSurveyAnswer)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasNarrator reports whether AI commentary is configured.
func (s *Service) HasNarrator() bool {
	return s.narrator != nil
}

// Compute validates d and returns its metrics and degradation warnings
// without persisting anything.
func (s *Service) Compute(d Draft) (engine.ComputedMetrics, []string, error) {
	if err := s.validate.Struct(d); err != nil {
		return engine.ComputedMetrics{}, nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	in := d.Input()
	metrics, err := engine.ComputeProjectMetrics(in)
	if err != nil {
		return engine.ComputedMetrics{}, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return metrics, engine.Warnings(in), nil
}

// Save recomputes every metric for d and stores the resulting record,
// replacing any previous record with the same id.
func (s *Service) Save(ctx context.Context, d Draft) (*Project, error) {
	p, _, err := s.Put(ctx, d)
	return p, err
}

// Put is Save that also reports whether a new record was created rather than
// an existing one replaced.
func (s *Service) Put(ctx context.Context, d Draft) (*Project, bool, error) {
	metrics, warnings, err := s.Compute(d)
	if err != nil {
		return nil, false, err
	}
	in := d.Input()

	now := s.now()
	p := &Project{
		ID:             strings.TrimSpace(d.ID),
		UserID:         d.UserID,
		Name:           strings.TrimSpace(d.Name),
		CreatedAt:      now,
		UpdatedAt:      now,
		Mode:           d.Mode,
		Status:         d.Status,
		Area:           d.Area,
		Responsible:    d.Responsible,
		ValueType:      d.ValueType,
		MainGoal:       d.MainGoal,
		KeyIndicator:   d.KeyIndicator,
		BusinessImpact: d.BusinessImpact,
		Comments:       d.Comments,
		Financials: Financials{
			FinancialInputs: in.Financials,
			ComputedMetrics: metrics,
		},
		Scenarios:  in.Scenarios,
		Risks:      in.Risks,
		ICVAnswers: in.Survey,
		ICVScore:   metrics.ConfidenceIndex,
		Score:      metrics.CompositeScore,
		ROI:        metrics.ROI,
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Risks == nil {
		p.Risks = []engine.Risk{}
	}

	created := true
	if p.ID == "" {
		p.ID = s.newID()
	} else {
		existing, err := s.store.Get(ctx, p.ID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return nil, false, fmt.Errorf("loading project %s: %w", p.ID, err)
		case existing.Mode != p.Mode:
			return nil, false, fmt.Errorf("%w: %s is %s", ErrModeChange, p.ID, existing.Mode)
		case existing.UserID != p.UserID:
			return nil, false, fmt.Errorf("%w: %s", ErrOwnerChange, p.ID)
		default:
			p.CreatedAt = existing.CreatedAt
			created = false
		}
	}

	for _, w := range warnings {
		s.logger.Warn(w,
			zap.String("op", "project.Save"),
			zap.String("project", p.ID),
		)
	}

	if err := s.store.Save(ctx, p); err != nil {
		return nil, false, fmt.Errorf("saving project %s: %w", p.ID, err)
	}

	s.logger.Info("project saved",
		zap.String("op", "project.Save"),
		zap.String("project", p.ID),
		zap.Bool("created", created),
		zap.String("mode", string(p.Mode)),
		zap.Float64("score", p.Score),
		zap.Float64("costOfProof", metrics.CostOfProof),
	)
	return p, created, nil
}

// Get returns the stored project with id.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.store.Get(ctx, id)
}

// List returns userID's projects, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Project, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListAll returns every stored project, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Project, error) {
	return s.store.ListAll(ctx)
}

// Delete removes the project with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// AttachNarrative generates the AI commentary for a stored project and saves
// it alongside the record. A failure leaves the stored project untouched, and
// a save that lands while the commentary is generated wins with ErrStale.
func (s *Service) AttachNarrative(ctx context.Context, id string) (*Project, error) {
	if s.narrator == nil {
		return nil, ErrNoNarrator
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.narrator.Narrate(ctx, p)
	if err != nil {
		s.logger.Warn("narrative generation failed",
			zap.String("op", "project.AttachNarrative"),
			zap.String("project", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("generating narrative: %w", err)
	}

	p.Analysis = analysis
	if err := s.store.Update(ctx, p, p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("saving narrative for %s: %w", id, err)
	}
	return p, nil
}
