package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", time.Hour, false), mr
}

func TestLoadWithoutCookieCreatesFreshSession(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Nil(t, sess.Actor())
}

func TestCommitPersistsDirtySession(t *testing.T) {
	sm, mr := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("user-1", "Jordan Lee", "MEMBER")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, sess))

	require.True(t, mr.Exists("session:"+sess.ID))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCommitSkipsCleanSession(t *testing.T) {
	sm, mr := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, sess))

	assert.False(t, mr.Exists("session:"+sess.ID))
	assert.Empty(t, res.Result().Cookies())
}

func TestLoadRoundTrip(t *testing.T) {
	sm, _ := newManager(t)

	first, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first.SetUser("user-1", "Jordan Lee", "MANAGER")
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), first))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: first.ID})

	second, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	actor := second.Actor()
	require.NotNil(t, actor)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, "Jordan Lee", actor.Name)
	assert.Equal(t, "MANAGER", actor.Role)
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newManager(t)

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1", "Jordan Lee", "MEMBER")
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, sess))

	assert.False(t, mr.Exists("session:"+sess.ID))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLoadUnknownCookieKeepsID(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "stale-id"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "stale-id", sess.ID)
	assert.Nil(t, sess.Actor())
}
