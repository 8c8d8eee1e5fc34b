package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modalyze/modalyze/internal/config"
	"github.com/modalyze/modalyze/internal/metrics"
	"github.com/modalyze/modalyze/internal/middleware"
)

// NewRouter assembles the gin engine: recovery, request IDs, metrics, CORS,
// the gateway endpoint and the prometheus scrape endpoint.
func NewRouter(cfg config.Config, h *Handler) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	// A panic anywhere below still answers with the classified envelope.
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{
			Error:   ErrInternal,
			Message: fmt.Sprint(err),
		})
	}))
	r.Use(middleware.RequestID())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed)

	r.GET("/gateway", h.Liveness)
	r.POST("/gateway", h.Analyze)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
