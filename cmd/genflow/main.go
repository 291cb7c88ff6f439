// Command genflow builds a lazy integer pipeline from flags, a config file
// or GENFLOW_* environment variables and prints one element per line.
//
//	genflow --source=count --op=filter:odd --op=map:mul:3 --op=window:2 --limit=5
//	genflow --source=cron --cron='*/15 * * * *' --op=take:4
//	genflow --source=redis --key=readings --op=accumulate:max --redis-output=peaks
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/vnykmshr/genflow/internal/config"
	"github.com/vnykmshr/genflow/internal/logger"
	"github.com/vnykmshr/genflow/internal/pipeline"
	"github.com/vnykmshr/genflow/pkg/metrics"
	"github.com/vnykmshr/genflow/pkg/sequence/redisseq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "genflow:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	deps := pipeline.Deps{Logger: log, Now: time.Now}

	if cfg.Metrics.Enabled() {
		deps.Metrics = metrics.Config{
			Enabled:   true,
			Registry:  prometheus.DefaultRegisterer,
			Namespace: cfg.Metrics.Namespace,
		}
		shutdown := serveMetrics(cfg.Metrics.Addr, log)
		defer shutdown()
	}

	var client *redis.Client
	if cfg.Source.Kind == "redis" || cfg.Redis.Output != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		deps.Redis = client
	}

	lines, err := pipeline.Build(cfg, deps)
	if err != nil {
		return err
	}
	log.Debug().Str("source", cfg.Source.Kind).Strs("ops", cfg.Ops).Msg("pipeline built")

	if cfg.Redis.Output != "" {
		n, err := redisseq.WriteList(ctx, client, cfg.Redis.Output, lines,
			redisseq.WithPageSize(cfg.Redis.PageSize))
		log.Info().Int64("written", n).Str("key", cfg.Redis.Output).Msg("output stored")
		return ignoreCancel(err)
	}

	w := bufio.NewWriter(stdout)
	defer func() { _ = w.Flush() }()

	var count int
	for line, err := range lines.All(ctx) {
		if err != nil {
			return ignoreCancel(err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		count++
		// Keep interactive output of slow sources such as cron flowing.
		if cfg.Source.Kind == "cron" {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	log.Debug().Int("lines", count).Msg("pipeline exhausted")
	return nil
}

// ignoreCancel treats an interrupted pipeline as a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveMetrics exposes the default Prometheus registry on addr until the
// returned function is called.
func serveMetrics(addr string, log zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
