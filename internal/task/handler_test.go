package task

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closetrack/closetrack/internal/shared"
	_ "github.com/closetrack/closetrack/testing"
)

type stubTaskService struct {
	task    *Task
	err     error
	gotID   string
	gotIn   UpdateInput
	gotCall string
}

func (s *stubTaskService) Get(ctx context.Context, id string) (*Task, error) {
	s.gotCall = "get"
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.task, nil
}

func (s *stubTaskService) Update(ctx context.Context, taskID string, in UpdateInput, actor *shared.Actor) (*Task, error) {
	s.gotCall = "update"
	s.gotID = taskID
	s.gotIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.task, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveTask(t *testing.T, svc taskService, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandler(discardLogger(), svc)
	router := chi.NewRouter()
	router.Route("/tasks", handler.MountRoutes)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		sess := &shared.Session{}
		sess.SetUser("user-1", "Jordan Lee", "MEMBER")
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func sampleTask() *Task {
	return &Task{
		ID:          "t-1",
		Title:       "Reconcile bank accounts",
		Status:      StatusInProgress,
		ChecklistID: "cl-1",
	}
}

func TestGetTask(t *testing.T) {
	svc := &stubTaskService{task: sampleTask()}
	res := serveTask(t, svc, http.MethodGet, "/tasks/t-1", "", true)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "t-1", svc.gotID)

	var body TaskResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Reconcile bank accounts", body.Title)
	assert.NotNil(t, body.Comments)
	assert.NotNil(t, body.StatusHistory)
}

func TestGetTaskUnauthenticated(t *testing.T) {
	res := serveTask(t, &stubTaskService{task: sampleTask()}, http.MethodGet, "/tasks/t-1", "", false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestGetTaskNotFound(t *testing.T) {
	res := serveTask(t, &stubTaskService{err: ErrNotFound}, http.MethodGet, "/tasks/missing", "", true)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestPatchTaskStatusChange(t *testing.T) {
	svc := &stubTaskService{task: sampleTask()}
	res := serveTask(t, svc, http.MethodPatch, "/tasks/t-1",
		`{"status":"DONE","isStatusChange":true}`, true)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "update", svc.gotCall)
	require.NotNil(t, svc.gotIn.Status)
	assert.Equal(t, StatusDone, *svc.gotIn.Status)
	assert.True(t, svc.gotIn.IsStatusChange)
}

func TestPatchTaskComment(t *testing.T) {
	svc := &stubTaskService{task: sampleTask()}
	res := serveTask(t, svc, http.MethodPatch, "/tasks/t-1",
		`{"comment":"checked with treasury"}`, true)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Nil(t, svc.gotIn.Status)
	require.NotNil(t, svc.gotIn.Comment)
	assert.Equal(t, "checked with treasury", *svc.gotIn.Comment)
	assert.False(t, svc.gotIn.IsStatusChange)
}

func TestPatchTaskRejectsUnknownStatus(t *testing.T) {
	svc := &stubTaskService{task: sampleTask()}
	res := serveTask(t, svc, http.MethodPatch, "/tasks/t-1",
		`{"status":"PAUSED","isStatusChange":true}`, true)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Empty(t, svc.gotCall, "service must not be reached on invalid payload")
}

func TestPatchTaskMalformedBody(t *testing.T) {
	res := serveTask(t, &stubTaskService{}, http.MethodPatch, "/tasks/t-1", `{`, true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestPatchTaskEmptyUpdate(t *testing.T) {
	res := serveTask(t, &stubTaskService{err: ErrEmptyUpdate}, http.MethodPatch, "/tasks/t-1", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestPatchTaskUnauthenticated(t *testing.T) {
	res := serveTask(t, &stubTaskService{}, http.MethodPatch, "/tasks/t-1",
		`{"status":"DONE","isStatusChange":true}`, false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
