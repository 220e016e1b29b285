// Package server exposes the project workflow over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/portfolio"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// narrativeTimeout caps a background narrative request after the response
// has been sent.
const narrativeTimeout = 2 * time.Minute

type handler struct {
	logger      *zap.Logger
	service     *project.Service
	validate    *validator.Validate
	maxBodySize int64
	version     string

	// spawn runs background work; tests replace it to run inline.
	spawn func(func())
}

// NewHandler constructs the HTTP handler that serves the project API.
func NewHandler(logger *zap.Logger, service *project.Service, maxBodySize int64, version string) http.Handler {
	return newHandler(logger, service, maxBodySize, version).routes()
}

func newHandler(logger *zap.Logger, service *project.Service, maxBodySize int64, version string) *handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	return &handler{
		logger:      logger,
		service:     service,
		validate:    validator.New(),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		spawn:       func(f func()) { go f() },
	}
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Compute only, nothing is stored
	mux.HandleFunc("POST /api/metrics", h.handleMetrics)

	mux.HandleFunc("POST /api/projects", h.handleSaveProject)
	mux.HandleFunc("GET /api/projects", h.handleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", h.handleGetProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.handleDeleteProject)

	mux.HandleFunc("GET /api/portfolio", h.handlePortfolio)
	mux.HandleFunc("GET /api/version", h.handleVersion)

	return mux
}

type metricsResponse struct {
	Metrics  engine.ComputedMetrics `json:"metrics"`
	Warnings []string               `json:"warnings,omitempty"`
}

type projectResponse struct {
	Project *project.Project `json:"project" yaml:"project"`
	Report  *project.Report  `json:"report" yaml:"report"`
}

type listQuery struct {
	UserID string `validate:"required,max=128"`
}

func (h *handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMetrics"
	draft, ok := h.decodeDraft(w, r, op)
	if !ok {
		return
	}

	metrics, warnings, err := h.service.Compute(draft)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, metricsResponse{Metrics: metrics, Warnings: warnings})
}

func (h *handler) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveProject"
	draft, ok := h.decodeDraft(w, r, op)
	if !ok {
		return
	}

	p, created, err := h.service.Put(r.Context(), draft)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	if h.service.HasNarrator() {
		id := p.ID
		h.spawn(func() { h.attachNarrative(id) })
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, p)
}

// attachNarrative runs after the save response. Its failure only leaves the
// commentary empty.
func (h *handler) attachNarrative(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), narrativeTimeout)
	defer cancel()

	if _, err := h.service.AttachNarrative(ctx, id); err != nil {
		h.logger.Warn("narrative not attached",
			zap.String("op", "server.attachNarrative"),
			zap.String("project", id),
			zap.Error(err),
		)
	}
}

func (h *handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListProjects"
	q := listQuery{UserID: strings.TrimSpace(r.URL.Query().Get("user"))}
	if err := h.validate.Struct(q); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid user query parameter: %v", err), op)
		return
	}

	projects, err := h.service.List(r.Context(), q.UserID)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	if projects == nil {
		projects = []*project.Project{}
	}

	h.writeJSON(w, http.StatusOK, projects)
}

func (h *handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetProject"
	p, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	report, err := project.BuildReport(p)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	resp := projectResponse{Project: p, Report: report}
	if r.URL.Query().Get("format") == "yaml" {
		h.writeYAML(w, http.StatusOK, resp, op)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteProject"
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePortfolio"
	projects, err := h.service.ListAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, portfolio.Summarize(projects))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeDraft(w http.ResponseWriter, r *http.Request, op string) (project.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var draft project.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return project.Draft{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode project: %v", err), op)
		return project.Draft{}, false
	}
	return draft, true
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrInvalid), errors.Is(err, engine.ErrUnknownMode):
		status = http.StatusBadRequest
	case errors.Is(err, project.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, project.ErrModeChange), errors.Is(err, project.ErrOwnerChange):
		status = http.StatusConflict
	}
	h.respondErrorWithOp(w, status, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeYAML(w http.ResponseWriter, status int, payload interface{}, op string) {
	data, err := yaml.Marshal(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode YAML: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write YAML response", zap.String("op", op), zap.Error(err))
	}
}
