// Package gatetest runs a complete gate service against in-memory SQLite
// and an in-memory object store.
package gatetest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"love-space-backend/config"
	"love-space-backend/controllers"
	"love-space-backend/controllers/authentication/authtest"
	"love-space-backend/services/clock"
	"love-space-backend/services/provider"
	"love-space-backend/services/provider/providertest"
	"love-space-backend/services/storage/storagetest"
	"love-space-backend/services/upload"
)

const (
	Passphrase = "coffee-x-cig"
	MeEmail    = "me@example.com"
	HerEmail   = "her@example.com"
	MeID       = "11111111-1111-1111-1111-111111111111"
	HerID      = "22222222-2222-2222-2222-222222222222"
	JWTSecret  = "test-jwt-secret"
)

type Env struct {
	Config  *config.Config
	Clock   *clock.ManualClock
	Store   *provider.Store
	DB      *gorm.DB
	Objects *storagetest.MemoryStore
	Server  *httptest.Server
}

// New starts the service. Options adjust the config before anything is
// built from it.
func New(t testing.TB, opts ...func(*config.Config)) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.SharedPassword = Passphrase
	cfg.AllowedEmails = []string{MeEmail, HerEmail}
	cfg.JWTSecret = JWTSecret
	cfg.SessionSecret = "test-session-secret"
	cfg.DatabaseURL = "sqlite://memory"
	cfg.MaxUploadBytes = 1 << 20
	for _, opt := range opts {
		opt(cfg)
	}

	c := clock.NewManualClock(time.Date(2024, 2, 14, 19, 0, 0, 0, time.UTC))
	store, db := providertest.NewStore(t, c)
	objects := storagetest.NewMemoryStore()

	handler := controllers.Handler(controllers.Deps{
		Config:   cfg,
		Store:    store,
		Uploads:  upload.NewFlow(objects, store, c),
		Sessions: config.NewSessionStore(cfg),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Env{
		Config:  cfg,
		Clock:   c,
		Store:   store,
		DB:      db,
		Objects: objects,
		Server:  srv,
	}
}

func (e *Env) Token(t testing.TB, userID, email string) string {
	return authtest.Token(t, e.Config.JWTSecret, userID, email)
}
