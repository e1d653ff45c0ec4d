package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

type stubEnqueuer struct {
	payload OverdueScanPayload
	err     error
}

func (s *stubEnqueuer) EnqueueOverdueScan(ctx context.Context, payload OverdueScanPayload) (*asynq.TaskInfo, error) {
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func mount(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestHealthReportsQueueInfo(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Retry: 1}}, nil, "", nil)
	rr := httptest.NewRecorder()
	mount(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 3, body.Pending)
	require.Equal(t, 1, body.Retry)
}

func TestHealthWithoutInspector(t *testing.T) {
	rr := httptest.NewRecorder()
	mount(NewHandler(nil, nil, "", nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0,"paused":false}`, rr.Body.String())
}

func TestHealthInspectorFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	mount(NewHandler(stubInspector{err: errors.New("redis down")}, nil, "", nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestTriggerOverdueScan(t *testing.T) {
	enq := &stubEnqueuer{}
	rr := httptest.NewRecorder()
	mount(NewHandler(nil, enq, "", nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan?project_id=p1", nil))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, []string{"p1"}, enq.payload.ProjectIDs)
	require.JSONEq(t, `{"task_id":"task-1","queue":"default"}`, rr.Body.String())
}

func TestTriggerOverdueScanWithoutQueue(t *testing.T) {
	rr := httptest.NewRecorder()
	mount(NewHandler(nil, nil, "", nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.Error(t, err)
}
