// Package narrative produces the optional AI commentary for a computed
// project. It reads engine output and never changes it.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/metria/innovation-accounting/internal/config"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/constants"
	"go.uber.org/zap"
)

const systemPrompt = "You are an innovation portfolio analyst reviewing the business case for a corporate innovation project. Respond with strict JSON only."

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = fmt.Errorf("%s not configured", config.APIKeyEnv)

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("narrative response was empty")
)

// Messager is the slice of the Anthropic client the generator needs.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// ClientCreator builds a Messager for an API key.
type ClientCreator func(apiKey string) Messager

func defaultClientCreator(apiKey string) Messager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newClient ClientCreator = defaultClientCreator

// Generator asks a language model for the four commentary sections.
type Generator struct {
	messages  Messager
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator returns a generator over messages. Zero config values fall
// back to the package defaults.
func NewGenerator(messages Messager, cfg config.NarrativeConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		messages:  messages,
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if g.model == "" {
		g.model = constants.DefaultNarrativeModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = constants.DefaultNarrativeMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = constants.DefaultNarrativeTimeoutSeconds * time.Second
	}
	return g
}

// NewGeneratorFromEnv builds a generator with the API key from the
// environment.
func NewGeneratorFromEnv(cfg config.NarrativeConfig, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(os.Getenv(config.APIKeyEnv))
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return NewGenerator(newClient(apiKey), cfg, logger), nil
}

// Narrate implements project.Narrator.
func (g *Generator) Narrate(ctx context.Context, p *project.Project) (*project.Analysis, error) {
	return g.Generate(ctx, BuildPrompt(p))
}

// Generate sends prompt and parses the sections out of the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (*project.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := g.now()
	resp, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting narrative: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	analysis, err := parseAnalysis(sb.String())
	if err != nil {
		return nil, err
	}
	analysis.Model = g.model
	analysis.GeneratedAt = g.now()

	g.logger.Debug("narrative generated",
		zap.String("op", "narrative.Generate"),
		zap.String("model", g.model),
		zap.Duration("elapsed", analysis.GeneratedAt.Sub(start)),
	)
	return analysis, nil
}

type sections struct {
	Strategic  string `json:"strategic"`
	Market     string `json:"market"`
	Risks      string `json:"risks"`
	ActionPlan string `json:"actionPlan"`
}

func parseAnalysis(raw string) (*project.Analysis, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}
	var s sections
	if err := json.Unmarshal([]byte(clean), &s); err != nil {
		return nil, fmt.Errorf("parsing narrative: %w", err)
	}
	if strings.TrimSpace(s.Strategic+s.Market+s.Risks+s.ActionPlan) == "" {
		return nil, ErrEmptyResponse
	}
	return &project.Analysis{
		Strategic:  strings.TrimSpace(s.Strategic),
		Market:     strings.TrimSpace(s.Market),
		Risks:      strings.TrimSpace(s.Risks),
		ActionPlan: strings.TrimSpace(s.ActionPlan),
	}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
