package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/wayfarer/internal/api"
	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/processor"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
	"github.com/MikeSquared-Agency/wayfarer/internal/speaker"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func newServeCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the NATS voice pipeline and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load(), seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo places into Postgres before serving")
	return cmd
}

func serve(parent context.Context, cfg config.Config, seed bool) error {
	setupLogging(cfg.LogLevel, os.Stdout)
	slog.Info("wayfarer starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database (optional: trips are not persisted and the static catalog is used)
	var (
		places catalog.Catalog = catalog.Default()
		trips  processor.TripStore
	)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		if seed {
			if err := seedPlaces(ctx, db); err != nil {
				return err
			}
		}
		places, trips = db, db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, using the built-in catalog and not storing trips")
	}

	// Redis session snapshots (optional)
	var snapshots session.Snapshots
	if cfg.RedisURL != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		snapshots = session.NewRedisSnapshots(rdb, cfg.SessionTTL)
		slog.Info("redis connected")
	}

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	registry := session.NewRegistry(cfg.SessionTTL, snapshots, slog.Default(), sessionOptions(cfg)...)
	planner := newPlanner(cfg, places)

	var proc *processor.Processor
	remote := speaker.NewRemote(hermesClient, func(e speaker.Event) { proc.OnSpeakerEvent(e) }, slog.Default())
	proc = processor.New(registry, planner, remote, trips, hermesClient, slog.Default())

	subs := []struct {
		subject string
		queue   bool
		handler func(string, []byte)
	}{
		{hermes.SubjectTranscriptRecognized, true, proc.HandleTranscript},
		{hermes.SubjectTranscriptError, true, proc.HandleRecognitionError},
		// Every replica tracks its own utterances, so playback events fan out.
		{hermes.SubjectSpeakerEvents, false, remote.HandleEvent},
	}
	for _, s := range subs {
		subscribe := hermesClient.Subscribe
		if s.queue {
			subscribe = hermesClient.QueueSubscribe
		}
		if err := subscribe(s.subject, s.handler); err != nil {
			return fmt.Errorf("subscribe to %s: %w", s.subject, err)
		}
	}

	// HTTP API
	srv := api.NewServer(api.Options{
		Port:          cfg.Port,
		APIToken:      cfg.APIToken,
		AllowedOrigin: cfg.AllowedOrigin,
		RateLimit:     cfg.RateLimit,
	}, registry, proc, planner, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"subjects":  []string{hermes.SubjectTranscriptRecognized, hermes.SubjectTranscriptError},
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("wayfarer ready", "port", cfg.Port)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown failed", "error", err)
	}
	slog.Info("wayfarer stopped")
	return nil
}

func seedPlaces(ctx context.Context, db *store.Store) error {
	def := catalog.Default()
	attractions, _ := def.Attractions(ctx)
	restaurants, _ := def.Restaurants(ctx)
	if err := db.SeedPlaces(ctx, append(attractions, restaurants...)); err != nil {
		return err
	}
	slog.Info("demo places seeded", "attractions", len(attractions), "restaurants", len(restaurants))
	return nil
}
