package main

import (
	"context"
	"log"
	"time"

	"example/aoe4-reviewer/app"
	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/auth"
)

const janitorEvery = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	app.ConfigureLogging(cfg.Logs)

	srv, cleanup, err := buildServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}
	defer cleanup()

	verifier, err := buildVerifier(cfg)
	if err != nil {
		log.Fatalf("failed to initialize auth: %v", err)
	}

	router, err := app.NewRouter(srv, verifier)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}
	log.Printf("listening addr=%s data_dir=%s", cfg.Server.Addr, cfg.Storage.DataDir)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// buildServer connects the optional backends named in cfg.
func buildServer(ctx context.Context, cfg *config.Config) (_ *app.Server, cleanup func(), err error) {
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	deps := app.ServerDeps{Location: loc}

	sessions, closeSessions, err := app.OpenSessions(ctx, cfg.Sessions, janitorEvery)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeSessions)
	deps.Sessions = sessions

	if cfg.DB.Enabled() {
		idx, err := app.OpenIndex(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = idx.Close() })
		deps.Index = idx
	}

	if cfg.QueueURL != "" {
		n, err := app.NewSQSNotifierFromEnv(ctx, cfg.QueueURL)
		if err != nil {
			return nil, nil, err
		}
		deps.Notifier = n
	}

	return app.NewServer(cfg, deps), cleanup, nil
}

func buildVerifier(cfg *config.Config) (*auth.Verifier, error) {
	if !cfg.Auth.Enabled() || auth.AuthDisabled() {
		return nil, nil
	}
	return auth.NewVerifier(cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.JWKSURL)
}
