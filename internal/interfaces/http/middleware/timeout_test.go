package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/your-org/cloudeats-backend/internal/config"
)

func timeoutRouter(requestTimeout time.Duration, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = requestTimeout

	r := gin.New()
	r.Use(Timeout(cfg))
	r.GET("/slow", handler)
	return r
}

func TestTimeoutCutsOffSlowHandler(t *testing.T) {
	r := timeoutRouter(20*time.Millisecond, func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestTimeoutPassesFastHandler(t *testing.T) {
	r := timeoutRouter(time.Second, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
