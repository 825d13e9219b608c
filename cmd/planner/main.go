package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/config"
	"github.com/gabriellangon/narrando-backend/internal/engine"
	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/oracle"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		inputPath  = flag.String("input", "-", "JSON file with the point list, or - for stdin")
		outputPath = flag.String("output", "-", "where to write the planning result, or - for stdout")
		maxMinutes = flag.Int("max-walking-minutes", 0, "per-hop walking threshold override")
		offline    = flag.Bool("offline", false, "skip the Directions provider; plan on geometric fallbacks only")
	)
	flag.Parse()

	// .env is optional, same as the rest of the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.Verbose)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	metrics.RegisterDefault()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	points, err := readPoints(*inputPath)
	if err != nil {
		log.Fatalf("input: %v", err)
	}

	deps := engine.Deps{Logger: logger}
	if !*offline && cfg.Google.APIKey != "" {
		google := oracle.NewGoogleClient(oracle.GoogleConfig{
			APIKey:            cfg.Google.APIKey,
			Timeout:           cfg.GoogleTimeout(),
			RequestsPerSecond: cfg.Google.RequestsPerSecond,
		}, logger)
		deps.Distance = google
		deps.Path = google
		deps.Reorder = google
	}
	if cfg.RedisURL != "" {
		cache, err := oracle.NewRedisCache(cfg.RedisURL, cfg.CacheTTL())
		if err != nil {
			logger.Warn("redis cache unavailable, using in-process cache", zap.Error(err))
		} else {
			deps.Cache = cache
			defer cache.Close()
		}
	}

	eng := engine.New(engine.Config{
		MaxWalkingMinutes:  cfg.MaxWalkingMinutes,
		MergeBudgetMinutes: cfg.MergeBudgetMinutes,
		SplitOversized:     cfg.SplitOversized,
		OversizeThreshold:  cfg.OversizeThreshold,
	}, deps)

	result, err := eng.Plan(context.Background(), points, *maxMinutes)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}

	if err := writeResult(*outputPath, result); err != nil {
		log.Fatalf("output: %v", err)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", zap.Error(err))
	}
}

func readPoints(path string) ([]model.Point, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var points []model.Point
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return points, nil
}

func writeResult(path string, result *model.PlanningResult) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
