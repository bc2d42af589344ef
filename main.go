package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benjibook/api-go/config"
	"github.com/benjibook/api-go/events"
	"github.com/benjibook/api-go/imagehost"
	"github.com/benjibook/api-go/routes"
	"github.com/benjibook/api-go/services"
	"github.com/benjibook/api-go/store"
	"github.com/benjibook/api-go/utils/log"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Log.WithError(err).Fatal("failed to load config")
	}
	log.InitLogger("benjibook-api", cfg.Server.Env)
	if cfg.Server.Env == log.ProdEnv {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Log.WithError(err).Fatal("failed to open store")
	}

	var images imagehost.Host = imagehost.NoopHost{BaseURL: "http://localhost:" + cfg.Server.Port + "/images"}
	if cfg.ImageHost.Enabled() {
		images = imagehost.NewR2Host(cfg.ImageHost)
	} else {
		log.Log.Warn("image host not configured, uploads are not persisted")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.Events.NATSURL,
			MaxReconnects: cfg.Events.MaxReconnects,
			ReconnectWait: cfg.Events.ReconnectWait,
			ClientName:    "benjibook-api",
		})
		if err != nil {
			log.Log.WithError(err).Fatal("failed to connect to NATS")
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	svc := services.New(st, images, publisher, services.Options{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	router := routes.NewRouter(routes.Dependencies{
		Services:       svc,
		Google:         config.NewGoogleConfig(cfg.Auth),
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Log.WithError(err).Error("graceful shutdown failed")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		log.Log.Warn("using in-memory store, data is lost on restart")
		return store.OpenMemory()
	}
	db, err := config.InitDB(cfg.Database, cfg.Server.Env != log.ProdEnv)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}
