package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/onair/internal/config"
	"github.com/five82/onair/internal/httpbridge"
	"github.com/five82/onair/internal/logging"
	"github.com/five82/onair/internal/nhk"
	"github.com/five82/onair/internal/prefs"
	"github.com/five82/onair/internal/state"
	"github.com/five82/onair/internal/ui"
)

const (
	executorStopTimeout = 5 * time.Second
	metricsShutdown     = 2 * time.Second
)

// Options configure the onair application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/onair/prefs.toml
	Overrides  config.Overrides
}

// Run boots the onair TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Apply(opts.Overrides)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	logger, flush, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer flush()

	logger.Info("starting onair",
		zap.String("area", cfg.Area),
		zap.String("api_base", cfg.APIBase),
		zap.Duration("refresh", cfg.Refresh),
		zap.Int("workers", cfg.Workers),
		zap.Bool("api_key", cfg.APIKey != ""))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.MetricsAddr != "" {
		_, stop, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	exec, err := httpbridge.NewExecutor(cfg.Workers, cfg.QueueSize,
		httpbridge.WithExecutorLogger(logger),
		httpbridge.WithExecutorMetrics(reg, ""))
	if err != nil {
		return fmt.Errorf("init executor: %w", err)
	}
	execCtx, cancelExec := context.WithCancel(ctx)
	defer cancelExec()
	if err := exec.Start(execCtx); err != nil {
		return fmt.Errorf("start executor: %w", err)
	}
	defer func() {
		if err := exec.Stop(executorStopTimeout); err != nil {
			logger.Warn("executor stop", zap.Error(err))
		}
	}()

	client := httpbridge.NewClient(httpbridge.ClientOptions{Timeout: cfg.RequestTimeout})
	arena, err := httpbridge.NewArena[nhk.Service](exec,
		httpbridge.WithClient(client),
		httpbridge.WithLogger(logger),
		httpbridge.WithMetrics(reg, ""))
	if err != nil {
		return fmt.Errorf("init arena: %w", err)
	}

	endpoint, err := nhk.NewEndpoint(cfg.APIBase, cfg.Area, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("init nhk endpoint: %w", err)
	}
	if !endpoint.HasKey() {
		logger.Warn("no api key configured", zap.String("env", config.APIKeyEnv))
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	service, err := nhk.ParseService(userPrefs.Service)
	if err != nil {
		logger.Warn("ignoring saved service", zap.Error(err))
		service = nhk.ServiceG1
	}

	poller := NewPoller(arena, endpoint, &state.Store{}, cfg.Refresh, logger)

	err = ui.Run(ctx, ui.Options{
		Source:    poller,
		Logger:    logger,
		LogPath:   cfg.Log.File,
		ThemeName: userPrefs.Theme,
		Service:   service,
		PrefsPath: opts.PrefsPath,
	})
	if err != nil {
		logger.Error("ui exited", zap.Error(err))
		return err
	}
	logger.Info("onair stopped", zap.Any("arena", arena.Stats()), zap.Any("executor", exec.Stats()))
	return nil
}

// serveMetrics exposes reg on addr until the returned stop func is called.
// It returns the address actually bound.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdown)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
