// Package app wires configuration, storage, services and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/qrlinkki/qrlinkki/internal/auth"
	"github.com/qrlinkki/qrlinkki/internal/config"
	"github.com/qrlinkki/qrlinkki/internal/database/postgres"
	"github.com/qrlinkki/qrlinkki/internal/qr"
	"github.com/qrlinkki/qrlinkki/internal/service"
	pkgpostgres "github.com/qrlinkki/qrlinkki/pkg/postgres"
	"golang.org/x/sync/errgroup"

	api "github.com/qrlinkki/qrlinkki/internal/api/http"
)

// Run starts the application and blocks until ctx is cancelled or the
// server fails. Both the database schema and the QR storage directory are
// prepared before the server starts accepting requests.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	db, err := pkgpostgres.New(
		ctx,
		cfg.Postgres.DSN(),
		pkgpostgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pkgpostgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pkgpostgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pkgpostgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pkgpostgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	producer, err := qr.NewProducer(cfg.Storage.QRDir)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare qr storage: %w", op, err)
	}

	key, err := cfg.JWT.Key()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tokens := auth.NewTokenManager(key, cfg.JWT.TokenTTL)

	linkRepo := postgres.NewLinkRepository(db)
	userRepo := postgres.NewUserRepository(db)

	linkSvc := service.NewLinkService(linkRepo, producer, cfg.App.BaseURL, cfg.App.ShortCodeLength)
	userSvc := service.NewUserService(userRepo, tokens)

	logger := httplog.NewLogger("qrlinkki", httplog.Options{
		JSON:    cfg.Env == config.EnvProd,
		Concise: cfg.Env != config.EnvProd,
	})

	router := api.NewRouter(logger, linkSvc, userSvc, tokens)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
