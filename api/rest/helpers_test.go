package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/api/rest"
	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/config"
	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/core/activity"
	"github.com/krtchnt/zenki/core/friendship"
	"github.com/krtchnt/zenki/core/inventory"
	"github.com/krtchnt/zenki/core/transaction"
	mw "github.com/krtchnt/zenki/middleware"
	"github.com/krtchnt/zenki/scheduler"
	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret   = "test-secret"
	testAdminKey = "admin-key"
)

type server struct {
	r       *gin.Engine
	db      *gorm.DB
	c       cache.Cache
	tracker *activity.Tracker
	sched   *scheduler.Scheduler
}

func newServer(t *testing.T) *server {
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	logger := testutil.Logger(t)
	deps := core.Deps{DB: db, Cache: c, Logger: logger}

	tracker := activity.New(deps)
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	r := gin.New()
	r.Use(mw.TraceID())
	sec := config.SecurityConfig{JWTSecret: testSecret, JWTTTLH: time.Hour}
	rest.Register(r.Group("/api"), rest.Handlers{
		Friends:      rest.NewFriendshipHandler(friendship.New(deps), logger),
		Activity:     rest.NewActivityHandler(tracker, logger),
		Transactions: rest.NewTransactionHandler(transaction.New(deps), logger),
		Inventory:    rest.NewInventoryHandler(inventory.NewService(deps), logger),
		Admin:        rest.NewAdminHandler(tracker, sched, 12*time.Hour, logger),
	},
		gin.HandlersChain{mw.Auth(sec, c), mw.RateLimit(1000, 1000, mw.ByUser)},
		gin.HandlersChain{mw.IPWhitelist(nil), rest.AdminAuth(testAdminKey)})

	return &server{r: r, db: db, c: c, tracker: tracker, sched: sched}
}

// login seeds a user and returns its id and a bearer token.
func (s *server) login(t *testing.T, name string) (int64, string) {
	t.Helper()
	u := testutil.SeedUser(t, s.db, name)
	tok, err := mw.IssueSession(context.Background(), s.c, u.UID, testSecret, time.Hour)
	require.NoError(t, err)
	return u.UID, tok
}

func doRequest(r *gin.Engine, method, path string, body interface{}, token string, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, path, body, token)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}
