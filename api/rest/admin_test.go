package rest_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/api/rest"
	"github.com/stretchr/testify/assert"
)

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	newRouter := func(key string) *gin.Engine {
		r := gin.New()
		r.GET("/admin", rest.AdminAuth(key), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	cases := []struct {
		name   string
		key    string
		header string
		want   int
	}{
		{"disabled without key", "", "anything", http.StatusServiceUnavailable},
		{"disabled even with empty header", "", "", http.StatusServiceUnavailable},
		{"missing header", "admin-key", "", http.StatusUnauthorized},
		{"same length wrong key", "admin-key", "admin-kez", http.StatusUnauthorized},
		{"prefix of key", "admin-key", "admin", http.StatusUnauthorized},
		{"longer than key", "admin-key", "admin-key2", http.StatusUnauthorized},
		{"correct key", "admin-key", "admin-key", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("X-Admin-Key", tc.header)
			}
			w := httptest.NewRecorder()
			newRouter(tc.key).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
