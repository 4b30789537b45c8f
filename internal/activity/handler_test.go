package activity

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closetrack/closetrack/internal/shared"
	_ "github.com/closetrack/closetrack/testing"
)

type stubFeedService struct {
	events []Event
	err    error
	gotID  string
}

func (s *stubFeedService) Feed(ctx context.Context, cycleID string) ([]Event, error) {
	s.gotID = cycleID
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func serveFeed(t *testing.T, svc feedService, path string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	router := chi.NewRouter()
	handler.MountRoutes(router)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authed {
		sess := &shared.Session{}
		sess.SetUser("user-1", "Jordan Lee", "MEMBER")
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestFeedEndpoint(t *testing.T) {
	svc := &stubFeedService{events: BuildFeed(sampleActivity())}
	res := serveFeed(t, svc, "/close-cycles/c-1/activity", true)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "c-1", svc.gotID)

	var events []Event
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, KindStatusChange, events[0].Kind)
	assert.Equal(t, "t-1", events[0].Task.ID)
}

func TestFeedEndpointUnauthenticated(t *testing.T) {
	res := serveFeed(t, &stubFeedService{}, "/close-cycles/c-1/activity", false)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestFeedEndpointCycleNotFound(t *testing.T) {
	res := serveFeed(t, &stubFeedService{err: ErrCycleNotFound}, "/close-cycles/missing/activity", true)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
