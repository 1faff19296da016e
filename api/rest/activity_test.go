package rest_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivity_StartStop(t *testing.T) {
	s := newServer(t)
	uid, tok := s.login(t, "alice")
	g := testutil.SeedGame(t, s.db, "Zenki Quest")
	play := fmt.Sprintf("/api/games/%d/play", g.GID)

	w := doRequest(s.r, http.MethodGet, play, nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["playing"])

	require.Equal(t, http.StatusOK, postJSON(s.r, play, nil, tok).Code)
	require.Equal(t, http.StatusOK, postJSON(s.r, play, nil, tok).Code, "second start is a no-op")

	w = doRequest(s.r, http.MethodGet, play, nil, tok)
	assert.Equal(t, true, decode(t, w)["playing"])

	require.Equal(t, http.StatusOK, doRequest(s.r, http.MethodDelete, play, nil, tok).Code)
	require.Equal(t, http.StatusOK, doRequest(s.r, http.MethodDelete, play, nil, tok).Code, "stop without open session")

	w = doRequest(s.r, http.MethodGet, fmt.Sprintf("/api/users/%d/activity", uid), nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["activity"].([]interface{})
	require.Len(t, list, 1)
	entry := list[0].(map[string]interface{})
	assert.Equal(t, "Zenki Quest", entry["gname"])
	assert.Equal(t, false, entry["playing"])
	assert.NotNil(t, entry["duration_us"])
}

func TestAdmin_SweepAndScheduler(t *testing.T) {
	s := newServer(t)
	_, tok := s.login(t, "alice")
	g := testutil.SeedGame(t, s.db, "Zenki Quest")
	require.Equal(t, http.StatusOK, postJSON(s.r, fmt.Sprintf("/api/games/%d/play", g.GID), nil, tok).Code)

	w := doRequest(s.r, http.MethodPost, "/api/admin/sessions/sweep", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(s.r, http.MethodPost, "/api/admin/sessions/sweep?max_age=bogus", nil, "", "X-Admin-Key", testAdminKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s.r, http.MethodPost, "/api/admin/sessions/sweep", nil, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["closed"], "fresh session is not stale")

	w = doRequest(s.r, http.MethodGet, "/api/admin/scheduler", nil, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["tasks"])

	w = doRequest(s.r, http.MethodPost, "/api/admin/scheduler/nope/run", nil, "", "X-Admin-Key", testAdminKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivity_BusyPairIsRetryable(t *testing.T) {
	s := newServer(t)
	uid, tok := s.login(t, "alice")
	g := testutil.SeedGame(t, s.db, "Zenki Quest")
	play := fmt.Sprintf("/api/games/%d/play", g.GID)

	release, err := cache.Lock(context.Background(), s.c, fmt.Sprintf("lock:play:%d_%d", uid, g.GID), time.Minute)
	require.NoError(t, err)

	w := postJSON(s.r, play, nil, tok)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, true, decode(t, w)["retryable"])

	release()
	w = postJSON(s.r, play, nil, tok)
	require.Equal(t, http.StatusOK, w.Code, "same request succeeds once the pair is free")
}
