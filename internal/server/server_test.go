package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metria/innovation-accounting/internal/portfolio"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const lightDraft = `{
  "userId": "ana",
  "name": "Invoice OCR",
  "mode": "LIGHT",
  "financials": {"directCost": 5000, "externalFees": 1000, "monthlySavings": 400}
}`

type stubNarrator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubNarrator) Narrate(_ context.Context, _ *project.Project) (*project.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &project.Analysis{Strategic: "fits", Market: "small", Risks: "data", ActionPlan: "pilot"}, nil
}

func newTestHandler(t *testing.T, opts ...project.Option) (*handler, http.Handler) {
	t.Helper()
	st, err := store.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := project.NewService(zap.NewNop(), st, opts...)
	h := newHandler(zap.NewNop(), svc, 0, "v1.2.3")
	h.spawn = func(f func()) { f() }
	return h, h.routes()
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func saveProject(t *testing.T, mux http.Handler, body string) *project.Project {
	t.Helper()
	rr := do(t, mux, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p project.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return &p
}

func TestHandleMetrics(t *testing.T) {
	_, mux := newTestHandler(t)

	rr := do(t, mux, http.MethodPost, "/api/metrics", lightDraft)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp metricsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 6000.0, resp.Metrics.CostOfProof)
	assert.Equal(t, 50.0, resp.Metrics.ConfidenceIndex)
	assert.Equal(t, 60.0, resp.Metrics.CompositeScore)

	// Nothing is stored by a compute request.
	rr = do(t, mux, http.MethodGet, "/api/projects?user=ana", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandleMetricsErrors(t *testing.T) {
	_, mux := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Malformed JSON", `{"mode":`, http.StatusBadRequest},
		{"Missing user", `{"mode":"LIGHT"}`, http.StatusBadRequest},
		{"Unknown mode", `{"userId":"ana","mode":"ULTRA"}`, http.StatusBadRequest},
		{"Short survey", `{"userId":"ana","mode":"PRO","icvAnswers":[1,1,1]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, mux, http.MethodPost, "/api/metrics", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleMetricsBodyLimit(t *testing.T) {
	h, _ := newTestHandler(t)
	h.maxBodySize = 16
	mux := h.routes()

	rr := do(t, mux, http.MethodPost, "/api/metrics", lightDraft)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestProjectLifecycle(t *testing.T) {
	_, mux := newTestHandler(t)

	saved := saveProject(t, mux, lightDraft)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "Invoice OCR", saved.Name)
	assert.Equal(t, 60.0, saved.Score)
	assert.Equal(t, 6000.0, saved.Financials.CostOfProof)

	rr := do(t, mux, http.MethodGet, "/api/projects/"+saved.ID, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got projectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, saved.ID, got.Project.ID)
	require.NotNil(t, got.Report)
	assert.True(t, got.Report.PaybackKnown)
	assert.Equal(t, 15.0, got.Report.PaybackMonths)
	assert.Equal(t, project.BandMedium, got.Report.Band)

	rr = do(t, mux, http.MethodGet, "/api/projects?user=ana", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []project.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rr = do(t, mux, http.MethodDelete, "/api/projects/"+saved.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, mux, http.MethodGet, "/api/projects/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProjectYAML(t *testing.T) {
	_, mux := newTestHandler(t)
	saved := saveProject(t, mux, lightDraft)

	rr := do(t, mux, http.MethodGet, "/api/projects/"+saved.ID+"?format=yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Contains(t, doc, "project")
	assert.Contains(t, doc, "report")
}

func TestSaveModeChangeConflict(t *testing.T) {
	_, mux := newTestHandler(t)
	saved := saveProject(t, mux, lightDraft)

	body := `{"id":"` + saved.ID + `","userId":"ana","mode":"PRO"}`
	rr := do(t, mux, http.MethodPost, "/api/projects", body)
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
}

func TestSaveExistingProjectReturnsOK(t *testing.T) {
	_, mux := newTestHandler(t)
	saved := saveProject(t, mux, lightDraft)

	body := strings.Replace(lightDraft, `"userId"`, `"id": "`+saved.ID+`", "userId"`, 1)
	body = strings.Replace(body, `"monthlySavings": 400`, `"monthlySavings": 900`, 1)
	rr := do(t, mux, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var p project.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, saved.ID, p.ID)
	assert.Equal(t, 900.0, p.Financials.MonthlySavings)
}

func TestSaveOwnerChangeConflict(t *testing.T) {
	_, mux := newTestHandler(t)
	saved := saveProject(t, mux, lightDraft)

	body := `{"id":"` + saved.ID + `","userId":"bruno","mode":"LIGHT"}`
	rr := do(t, mux, http.MethodPost, "/api/projects", body)
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = do(t, mux, http.MethodGet, "/api/projects?user=bruno", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListProjectsRequiresUser(t *testing.T) {
	_, mux := newTestHandler(t)
	rr := do(t, mux, http.MethodGet, "/api/projects", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPortfolio(t *testing.T) {
	_, mux := newTestHandler(t)
	saveProject(t, mux, lightDraft)
	saveProject(t, mux, strings.Replace(lightDraft, `"ana"`, `"bruno"`, 1))

	rr := do(t, mux, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var s portfolio.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	assert.Equal(t, 2, s.Projects)
	assert.Equal(t, 2, s.LightProjects)
	assert.Equal(t, 12000.0, s.TotalCostOfProof)
	assert.Len(t, s.Users, 2)
}

func TestSaveAttachesNarrative(t *testing.T) {
	narrator := &stubNarrator{}
	_, mux := newTestHandler(t, project.WithNarrator(narrator))

	saved := saveProject(t, mux, lightDraft)
	assert.Nil(t, saved.Analysis)

	rr := do(t, mux, http.MethodGet, "/api/projects/"+saved.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got projectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.NotNil(t, got.Project.Analysis)
	assert.Equal(t, "pilot", got.Project.Analysis.ActionPlan)
	assert.Equal(t, saved.Score, got.Project.Score)
	assert.Equal(t, 1, narrator.calls)
}

func TestSaveNarrativeFailureKeepsProject(t *testing.T) {
	narrator := &stubNarrator{err: errors.New("model unavailable")}
	_, mux := newTestHandler(t, project.WithNarrator(narrator))

	saved := saveProject(t, mux, lightDraft)

	rr := do(t, mux, http.MethodGet, "/api/projects/"+saved.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got projectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Nil(t, got.Project.Analysis)
	assert.Equal(t, saved.Financials.ComputedMetrics, got.Project.Financials.ComputedMetrics)
}

func TestHandleVersion(t *testing.T) {
	_, mux := newTestHandler(t)
	rr := do(t, mux, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"v1.2.3"}`, rr.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := newTestHandler(t)
	rr := do(t, mux, http.MethodGet, "/api/metrics", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNewHandlerDefaults(t *testing.T) {
	h := newHandler(nil, nil, 0, " ")
	assert.Equal(t, "dev", h.version)
	assert.Positive(t, h.maxBodySize)
	assert.NotNil(t, h.logger)

	done := make(chan struct{})
	h.spawn(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spawned work did not run")
	}
}

func TestSaveAcceptsLowercaseMode(t *testing.T) {
	_, mux := newTestHandler(t)
	p := saveProject(t, mux, strings.Replace(lightDraft, `"LIGHT"`, `"light"`, 1))
	assert.Equal(t, "LIGHT", string(p.Mode))

	rr := do(t, mux, http.MethodPost, "/api/metrics", strings.Replace(lightDraft, `"LIGHT"`, `"Pro"`, 1))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}
