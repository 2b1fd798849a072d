// Package agentops exposes a small HTTP admin surface alongside a running
// agent: health/readiness probes, a status snapshot, and a prometheus
// scrape endpoint.
package agentops

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danmuck/bcp/internal/agent"
)

// Server is the admin HTTP surface for one running agent.
type Server struct {
	router *gin.Engine
	agent  *agent.Agent
}

// New builds a Server wired to agent. corsOrigins controls which origins
// may call the admin endpoints from a browser; an empty list disables
// cross-origin access entirely.
func New(a *agent.Agent, corsOrigins []string, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{router: r, agent: a}
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/status", s.handleStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Run blocks serving the admin surface on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.agent.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"address": s.agent.Address(),
		"state":   s.agent.State().String(),
		"goal":    s.agent.Goal().String(),
	})
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("admin_http_request")
	}
}
