package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"surrogated/internal/common/fsutil"
	"surrogated/internal/config"
	"surrogated/internal/httpapi"
)

var (
	serveAddr      string
	staticDir      string
	corsOrigins    string
	maxBodyBytes   int64
	concurrency    int
	requestTimeout time.Duration
	noWatch        bool
	noRepair       bool
	cacheSize      int
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API and the frontend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	// Flags with environment variable defaults
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", os.Getenv("SURROGATED_ADDR"), "HTTP listen address (default "+config.DefaultAddr+")")
	f.StringVar(&staticDir, "static-dir", "", "Built frontend to serve for non-API paths")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed origins (default any)")
	f.Int64Var(&maxBodyBytes, "max-body-bytes", 0, "Maximum request body size (default 1MiB)")
	f.IntVar(&concurrency, "concurrency", 0, "Concurrent model invocations per request (default GOMAXPROCS)")
	f.DurationVar(&requestTimeout, "request-timeout", 0, "Per-request timeout (0 disables)")
	f.BoolVar(&noWatch, "no-watch", false, "Do not reload the emissions file when it changes")
	f.BoolVar(&noRepair, "no-repair", false, "Skip the buffer repair pass when models load")
	f.IntVar(&cacheSize, "cache-size", 0, "Feature vectors whose results are cached (negative disables)")
}

// applyServeFlags copies explicitly set serve flags onto c. Flags that do not
// exist on the running command are never Changed.
func applyServeFlags(flags *pflag.FlagSet, c *config.Config) {
	if flags.Changed("addr") || (c.Addr == "" && serveAddr != "") {
		c.Addr = serveAddr
	}
	if flags.Changed("static-dir") {
		c.StaticDir = staticDir
	}
	if flags.Changed("cors-origins") {
		c.CORSOrigins = splitCSV(corsOrigins)
	}
	if flags.Changed("max-body-bytes") {
		c.MaxBodyBytes = maxBodyBytes
	}
	if flags.Changed("concurrency") {
		c.Concurrency = concurrency
	}
	if flags.Changed("request-timeout") {
		c.RequestTimeout = requestTimeout.String()
	}
	if flags.Changed("no-watch") {
		c.WatchEmissions = boolFlag(!noWatch)
	}
	if flags.Changed("no-repair") {
		c.RepairOnLoad = boolFlag(!noRepair)
	}
	if flags.Changed("cache-size") {
		c.CacheSize = cacheSize
	}
}

func boolFlag(b bool) *bool { return &b }

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	if r := a.mgr.SanityCheck(); !r.OK() {
		logger.Warn().
			Int("loaded", r.Loaded).
			Strs("missing", r.Missing).
			Strs("corrupt", r.Corrupt).
			Str("emissions_error", r.Error).
			Msg("serving with problems")
	}

	timeout, _ := cfg.Timeout()
	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRequestTimeout(timeout)
	httpapi.SetCORSOptions(true, cfg.CORSOrigins)
	if fsutil.IsDir(cfg.StaticDir) {
		httpapi.SetStaticDir(cfg.StaticDir)
	} else {
		logger.Debug().Str("dir", cfg.StaticDir).Msg("no frontend to serve")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(a.mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Str("models_dir", a.reg.Dir()).Int("loaded", a.reg.Loaded()).Msg("surrogated listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Watch() {
		g.Go(func() error {
			if err := a.meta.Watch(gctx); err != nil {
				// The API keeps working on the table loaded at startup.
				logger.Warn().Err(err).Msg("emissions watch disabled")
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown error")
		}
		return nil
	})
	err = g.Wait()
	logger.Info().Msg("surrogated stopped")
	return err
}
