package freeze

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(enabled bool) *gin.Engine {
	router := gin.New()
	router.Use(NewMiddleware(enabled).Handler())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "OK") }
	router.GET("/teachings", ok)
	router.HEAD("/teachings", ok)
	router.OPTIONS("/teachings", ok)
	router.POST("/teachings", ok)
	router.PUT("/teachings/:id", ok)
	router.PATCH("/teachings/:id", ok)
	router.DELETE("/teachings/:id", ok)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}

func TestMiddleware_ReadsPass(t *testing.T) {
	router := newRouter(true)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(router, method, "/teachings").Code)
		})
	}
}

func TestMiddleware_WritesBlockedWhenFrozen(t *testing.T) {
	router := newRouter(true)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/teachings"},
		{http.MethodPut, "/teachings/1"},
		{http.MethodPatch, "/teachings/1"},
		{http.MethodDelete, "/teachings/1"},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			w := serve(router, tc.method, tc.path)
			require.Equal(t, http.StatusForbidden, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, true, body["catalog_frozen"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMiddleware_DisabledPassesEverything(t *testing.T) {
	router := newRouter(false)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			path := "/teachings/1"
			if method == http.MethodPost {
				path = "/teachings"
			}
			w := serve(router, method, path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "OK", w.Body.String())
		})
	}
}
