package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "wayfarer",
		Short:         "Voice trip-planning assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newChatCmd(), newPlanCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("wayfarer failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string, w io.Writer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func sessionOptions(cfg config.Config) []dialogue.Option {
	return []dialogue.Option{
		dialogue.WithDurationSource(dialogue.UniformDuration{Min: cfg.TripMinMinutes, Max: cfg.TripMaxMinutes}),
		dialogue.WithWeatherSource(dialogue.StaticWeather(cfg.WeatherCondition)),
	}
}

func userPreferences(cfg config.Config) ranking.UserPreferences {
	prefs := catalog.DefaultPreferences()
	prefs.Cuisines = cfg.PreferredCuisines
	prefs.MaxPriceLevel = cfg.MaxPriceLevel
	return prefs
}

func newPlanner(cfg config.Config, places catalog.Catalog) *assistant.Planner {
	return assistant.NewPlanner(places, userPreferences(cfg), assistant.SystemClock{}, slog.Default())
}
