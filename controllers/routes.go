package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"love-space-backend/config"
	"love-space-backend/controllers/authentication"
	"love-space-backend/controllers/gate"
	"love-space-backend/controllers/httpCors"
	"love-space-backend/controllers/presence"
	"love-space-backend/controllers/recordings"
	"love-space-backend/services/provider"
	"love-space-backend/services/upload"
)

type Deps struct {
	Config   *config.Config
	Store    *provider.Store
	Uploads  *upload.Flow
	Sessions sessions.Store
}

// NewRouter wires every gate service route.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	allowed := authentication.NewAllowList(cfg.AllowedEmails)
	if len(allowed) > 2 {
		logrus.Warnf("allow-list has %d entries; partner status assumes exactly two users", len(allowed))
	}

	auth := &authentication.Authenticator{
		Secret:   []byte(cfg.JWTSecret),
		Allowed:  allowed,
		Sessions: deps.Sessions,
	}
	g := gate.New(cfg.SharedPassword, cfg.SharedPasswordBcrypt, allowed, deps.Sessions)
	status := &presence.Handlers{Store: deps.Store}
	rec := &recordings.Handlers{
		Store:          deps.Store,
		Uploads:        deps.Uploads,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	api := r.Group("/api")
	{
		api.POST("/validate-password", g.ValidatePassword)
		api.POST("/validate-email", g.ValidateEmail)

		api.GET("/recordings/:userId", rec.List)
		api.POST("/recordings", auth.RequireUser(), rec.Upload)
		api.POST("/reactions", auth.RequireUser(), rec.AddReaction)

		api.POST("/user-status", auth.OptionalUser(), status.SetStatus)
		api.GET("/partner-status/:userId", status.PartnerStatus)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Handler is the router behind the CORS policy.
func Handler(deps Deps) http.Handler {
	return httpCors.CorsSettings(deps.Config.CORSOrigins).Handler(NewRouter(deps))
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}
