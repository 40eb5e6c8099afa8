package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/internal/monitoring"
	"github.com/articflow/agentlink/internal/store"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, kind model.JobKind, req model.ReportRequest) (*model.Job, error) {
	args := m.Called(ctx, kind, req)
	if v := args.Get(0); v != nil {
		return v.(*model.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	h := newRouter(&mockSubmitter{}, newTestStore(t), nil, 0)

	rr := doRequest(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGenerateAgentsReport_Accepted(t *testing.T) {
	sub := &mockSubmitter{}
	sub.On("Submit", mock.Anything, model.JobKindAgents, mock.MatchedBy(func(r model.ReportRequest) bool {
		return r.Suburb == "Manly" && r.State == "NSW" && len(r.PropertyTypes) == 1
	})).Return(&model.Job{ID: "job-1", Suburb: "Manly", Status: model.JobStatusProcessing}, nil)

	h := newRouter(sub, newTestStore(t), nil, 0)
	rr := doRequest(t, h, http.MethodPost, "/api/generate-agents-report", map[string]any{
		"suburb":         "Manly",
		"state":          "NSW",
		"property_types": []string{"House"},
	})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "job-1", body["job_id"])
	assert.Equal(t, "processing", body["status"])
	sub.AssertExpectations(t)
}

func TestGenerateAgencyReport_UsesAgencyKind(t *testing.T) {
	sub := &mockSubmitter{}
	sub.On("Submit", mock.Anything, model.JobKindAgencies, mock.Anything).
		Return(&model.Job{ID: "job-2", Suburb: "Bondi"}, nil)

	h := newRouter(sub, newTestStore(t), nil, 0)
	rr := doRequest(t, h, http.MethodPost, "/api/generate-agency-report", map[string]any{"suburb": "Bondi"})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	sub.AssertExpectations(t)
}

func TestGenerateReport_BadRequests(t *testing.T) {
	sub := &mockSubmitter{}
	h := newRouter(sub, newTestStore(t), nil, 0)

	rr := doRequest(t, h, http.MethodPost, "/api/generate-agents-report", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = doRequest(t, h, http.MethodPost, "/api/generate-agents-report", map[string]any{"state": "NSW"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "suburb is required")

	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateReport_SubmitError(t *testing.T) {
	sub := &mockSubmitter{}
	sub.On("Submit", mock.Anything, model.JobKindAgents, mock.Anything).Return(nil, eris.New("jobs: runner closed"))

	h := newRouter(sub, newTestStore(t), nil, 0)
	rr := doRequest(t, h, http.MethodPost, "/api/generate-agents-report", map[string]any{"suburb": "Manly"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestJobStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	h := newRouter(&mockSubmitter{}, st, nil, 0)

	job, err := st.CreateJob(ctx, model.JobKindAgents, "Manly", json.RawMessage(`{"suburb":"Manly"}`))
	require.NoError(t, err)
	require.NoError(t, st.UpdateJobStatus(ctx, job.ID, model.JobStatusComputingCommission))

	rr := doRequest(t, h, http.MethodGet, "/api/job-status/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, job.ID, body["job_id"])
	assert.Equal(t, "computing_commission", body["status"])
	assert.EqualValues(t, 60, body["progress"])
	assert.NotContains(t, body, "result")
	assert.NotContains(t, body, "error")

	require.NoError(t, st.CompleteJob(ctx, job.ID, json.RawMessage(`{"suburb":"Manly","top_agents":[]}`)))

	rr = doRequest(t, h, http.MethodGet, "/api/job-status/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var done jobStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &done))
	assert.Equal(t, model.JobStatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.JSONEq(t, `{"suburb":"Manly","top_agents":[]}`, string(done.Result))
}

func TestJobStatus_Failed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	h := newRouter(&mockSubmitter{}, st, nil, 0)

	job, err := st.CreateJob(ctx, model.JobKindAgencies, "Bondi", nil)
	require.NoError(t, err)
	require.NoError(t, st.FailJob(ctx, job.ID, "pipeline: suburb is required"))

	rr := doRequest(t, h, http.MethodGet, "/api/job-status/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body jobStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, model.JobStatusFailed, body.Status)
	assert.Equal(t, "pipeline: suburb is required", body.Error)
}

func TestJobStatus_NotFound(t *testing.T) {
	h := newRouter(&mockSubmitter{}, newTestStore(t), nil, 0)

	rr := doRequest(t, h, http.MethodGet, "/api/job-status/missing", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "job not found")
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	h := newRouter(&mockSubmitter{}, st, nil, 0)

	for _, suburb := range []string{"Manly", "Bondi", "Mosman"} {
		_, err := st.CreateJob(ctx, model.JobKindAgents, suburb, nil)
		require.NoError(t, err)
	}

	rr := doRequest(t, h, http.MethodGet, "/api/jobs?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Job
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rr = doRequest(t, h, http.MethodGet, "/api/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = doRequest(t, h, http.MethodGet, "/api/jobs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	job, err := st.CreateJob(ctx, model.JobKindAgents, "Manly", nil)
	require.NoError(t, err)
	require.NoError(t, st.FailJob(ctx, job.ID, "boom"))

	h := newRouter(&mockSubmitter{}, st, monitoring.NewCollector(st, nil, 0), 24)

	rr := doRequest(t, h, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap monitoring.MetricsSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.JobsTotal)
	assert.Equal(t, 1, snap.JobsFailed)
	assert.InDelta(t, 1.0, snap.FailRate, 1e-9)
	assert.Equal(t, 24, snap.LookbackHours)

	rr = doRequest(t, h, http.MethodGet, "/api/metrics?hours=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.LookbackHours)

	rr = doRequest(t, h, http.MethodGet, "/api/metrics?hours=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint_DisabledWithoutCollector(t *testing.T) {
	h := newRouter(&mockSubmitter{}, newTestStore(t), nil, 0)

	rr := doRequest(t, h, http.MethodGet, "/api/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(&mockSubmitter{}, newTestStore(t), nil, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-agents-report", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
