package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func requestIDRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		*capture = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequestIDGenerated(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(recorder, req)

	id := recorder.Header().Get(Header)
	require.NotEmpty(t, id)
	require.Equal(t, id, fromCtx)
}

func TestRequestIDPropagatesInbound(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "upstream-id-42")
	router.ServeHTTP(recorder, req)

	require.Equal(t, "upstream-id-42", recorder.Header().Get(Header))
	require.Equal(t, "upstream-id-42", fromCtx)
}

func TestRequestIDRejectsOversizedInbound(t *testing.T) {
	var fromCtx string
	router := requestIDRouter(&fromCtx)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, strings.Repeat("x", 200))
	router.ServeHTTP(recorder, req)

	id := recorder.Header().Get(Header)
	require.NotEmpty(t, id)
	require.NotContains(t, id, "xxx")
}
