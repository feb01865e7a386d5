package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	apiapp "github.com/mbelos/plantcatalog/app/api"
	authapp "github.com/mbelos/plantcatalog/app/auth"
	siteapp "github.com/mbelos/plantcatalog/app/site"
	"github.com/mbelos/plantcatalog/auth"
	"github.com/mbelos/plantcatalog/catalog"
	"github.com/mbelos/plantcatalog/config"
	"github.com/mbelos/plantcatalog/log"
	"github.com/mbelos/plantcatalog/models"
	"github.com/mbelos/plantcatalog/session"
	"github.com/mbelos/plantcatalog/web"
)

func main() {
	cfg := config.Load()
	logger := log.New(cfg.Env)

	db, err := models.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("opening database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatalf("migrating database: %v", err)
	}

	var categories int64
	if err := db.Model(&models.Category{}).Count(&categories).Error; err == nil && categories == 0 {
		logger.Print("catalog is empty; run cmd/seed to load the demo content")
	}

	service := catalog.NewService(
		models.NewUsersRepository(db),
		models.NewCategoriesRepository(db),
		models.NewPlantsRepository(db),
	)
	sessions := session.NewManager(cfg.SessionTTL)
	google := auth.NewGoogleClient(auth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	})
	views, err := web.NewViews()
	if err != nil {
		logger.Fatalf("parsing templates: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", web.Static())
	siteapp.NewHandler(service, sessions, views, logger).Register(mux)
	apiapp.NewHandler(service, logger).Register(mux)
	authapp.NewHandler(google, service, sessions, views, logger).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
