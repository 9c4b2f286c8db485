package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/theinvitelink/rsvp-service/internal/auth"
	"github.com/theinvitelink/rsvp-service/internal/config"
	"github.com/theinvitelink/rsvp-service/internal/handlers"
)

// NewRouter wires the public surface, the session-token middleware and the
// admin-key-guarded moderation surface.
//
// Public: /health, /ready, event pages, RSVP, my-events
// Admin:  /admin/* behind X-Admin-Key
func NewRouter(cfg config.Config, st handlers.Store, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Everything event-facing works anonymously; the session middleware only
	// attaches an account id when a valid bearer token is presented.
	public := r.Group("/")
	public.Use(auth.SessionMiddleware(cfg.SessionSecret))

	handlers.RegisterEventRoutes(public, st)
	handlers.RegisterGuestRoutes(public, st)
	handlers.RegisterManageRoutes(public, st)

	admin := r.Group("/")
	admin.Use(auth.AdminMiddleware(cfg.AdminKey))
	handlers.RegisterAdminRoutes(admin, st)

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
