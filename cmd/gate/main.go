package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veridesk/facegate/internal/api"
	"github.com/veridesk/facegate/internal/camera"
	"github.com/veridesk/facegate/internal/config"
	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/face/insight"
	"github.com/veridesk/facegate/internal/geo"
	"github.com/veridesk/facegate/internal/hrapi"
	"github.com/veridesk/facegate/internal/metrics"
	"github.com/veridesk/facegate/internal/verify"
	"github.com/veridesk/facegate/internal/ws"
)

func main() {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting facegate agent",
		slog.String("environment", cfg.Environment),
		slog.String("strategy", cfg.Strategy),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := hrapi.NewClient(hrapi.Config{
		BaseURL:       cfg.BackendURL,
		Token:         cfg.BackendToken,
		SigningSecret: cfg.SigningSecret,
		Timeout:       15 * time.Second,
		RetryCount:    3,
	})

	// The geofence is owned by the backend profile, never configured locally.
	info, err := backend.MyInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetch employee profile: %w", err)
	}
	fence := geo.Fence{
		Latitude:     info.WorkLat,
		Longitude:    info.WorkLng,
		RadiusMeters: info.GeofenceRadius,
	}
	logger.Info("geofence loaded",
		slog.Float64("lat", fence.Latitude),
		slog.Float64("lng", fence.Longitude),
		slog.Float64("radius_m", fence.RadiusMeters),
	)

	watcher := geo.NewWatcher(fence)
	if err := watcher.Run(ctx, &geo.StaticSource{
		Position: geo.Position{Latitude: cfg.PositionLat, Longitude: cfg.PositionLng},
		Interval: cfg.PositionInterval,
	}); err != nil {
		return fmt.Errorf("start position watcher: %w", err)
	}
	defer watcher.Close()

	clock := hrapi.NewServerClock(backend, cfg.ClockInterval, logger)
	go clock.Run(ctx)
	defer clock.Close()

	hub := ws.NewHub()
	go hub.Run()

	recorder := metrics.NewRecorder()
	notify := hub.Notifier()

	factory, err := strategyFactory(cfg, backend, logger)
	if err != nil {
		return err
	}

	build := func(ctx context.Context, kind domain.AttendanceKind, strategy verify.Strategy) *verify.Session {
		return verify.NewSession(verify.SessionConfig{
			Kind:     kind,
			Strategy: strategy,
			Camera:   camera.NewDevice(cfg.CameraDevice, cfg.FrameMaxEdge),
			Watcher:  watcher,
			Limiter:  verify.NewAttemptLimiter(cfg.MaxMatchAttempts, cfg.AttemptWindow),
			Backend:  backend,
			Logger:   logger,
			Notify:   notify,
		})
	}
	manager := verify.NewManager(factory, build)
	defer manager.Shutdown()

	router := api.NewRouter(logger, &api.Dependencies{
		Config:   cfg,
		Manager:  manager,
		Watcher:  watcher,
		Clock:    clock,
		Backend:  backend,
		Recorder: recorder,
		Hub:      hub,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}

// strategyFactory builds the per-session verification strategy for the
// configured mode. Local strategies share one extractor so daemon model
// loading is memoized across sessions; everything session-scoped (reference
// descriptors, blink state) still lives inside the strategy instance.
func strategyFactory(cfg *config.Config, backend *hrapi.Client, logger *slog.Logger) (verify.Factory, error) {
	switch cfg.Strategy {
	case verify.StrategyRemote:
		return func(ctx context.Context) (verify.Strategy, error) {
			return verify.NewRemoteStrategy(backend), nil
		}, nil

	case verify.StrategyRekognition:
		return func(ctx context.Context) (verify.Strategy, error) {
			return verify.NewRekognitionStrategy(ctx, cfg.AWSRegion, backend, logger)
		}, nil

	case verify.StrategyLocal:
		extractor := insight.NewExtractor(insight.Config{
			BaseURL:     cfg.InferenceURL,
			FallbackURL: cfg.InferenceFallbackURL,
			Timeout:     30 * time.Second,
		})
		matcher := face.NewMatcher(cfg.MatchThreshold)
		return func(ctx context.Context) (verify.Strategy, error) {
			return verify.NewLocalStrategy(extractor, matcher, backend, cfg.BlinkThreshold, logger), nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}
