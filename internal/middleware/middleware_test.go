package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-catalog/internal/models"
	"github.com/noah-isme/college-catalog/internal/service"
)

func newProtectedRouter(tokens *service.TokenService, metrics *service.MetricsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/favorites", JWT(tokens), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func TestJWTRequiresBearerToken(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Expiration: time.Hour})
	r := newProtectedRouter(tokens, nil)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestJWTAttachesClaims(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret", Expiration: time.Hour})
	metrics := service.NewMetricsService()
	r := newProtectedRouter(tokens, metrics)

	token, _, err := tokens.Issue("user-7")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-7", w.Body.String())
	assert.Equal(t, uint64(1), metrics.Snapshot().HTTPRequests)
}

func TestMetricsSkipsHealthAndLabelsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/colleges", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/colleges", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, uint64(2), metrics.Snapshot().HTTPRequests)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `path="unmatched"`)
	assert.Contains(t, body, `path="/colleges"`)
	assert.NotContains(t, body, `path="/health"`)
}
