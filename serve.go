package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"love-space-backend/config"
	"love-space-backend/controllers"
	"love-space-backend/services/clock"
	"love-space-backend/services/provider"
	"love-space-backend/services/storage"
	"love-space-backend/services/upload"
)

var (
	serveCommand = app.Command("serve", "Run the gate service.")
	serveMigrate = serveCommand.Flag("migrate", "Create the provider tables before serving.").Bool()
)

func doServe() {
	cfg := loadConfig()
	kingpin.FatalIfError(cfg.Validate(), "Invalid config")

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(cfg)
	kingpin.FatalIfError(err, "Database")

	c := clock.RealClock{}
	store := provider.NewStore(db, c)
	if *serveMigrate {
		kingpin.FatalIfError(store.Migrate(), "Migrate")
	}

	objects, err := storage.New(ctx, cfg.Storage)
	kingpin.FatalIfError(err, "Object store")

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: controllers.Handler(controllers.Deps{
			Config:   cfg,
			Store:    store,
			Uploads:  upload.NewFlow(objects, store, c),
			Sessions: config.NewSessionStore(cfg),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("shutdown")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"storage": cfg.Storage.Backend,
	}).Info("gate service listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		kingpin.FatalIfError(err, "Serve")
	}
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		if command == serveCommand.FullCommand() {
			doServe()
			return true
		}
		return false
	})
}
