package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stremio-service/core/config"
	"stremio-service/core/loader"
	"stremio-service/core/logger"
	"stremio-service/core/metrics"
	"stremio-service/core/middleware/auth"
	"stremio-service/core/middleware/rayid"
	"stremio-service/core/middleware/requestlog"
	"stremio-service/core/supervisor"

	"stremio-service/feature/binwatch"
	"stremio-service/feature/server"
	"stremio-service/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the service",
	Long:  `Starts the streaming server supervisor, the status poller and the local control API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runService(ctx, cfg, logg)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

// runService runs every component until ctx is done or one of them fails, then stops the server.
func runService(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	// 3. Resolve binaries
	serverCfg, err := cfg.Server.ServerConfig()
	if err != nil {
		return fmt.Errorf("invalid server binaries: %w", err)
	}
	logg.Info("Server binaries resolved", zap.String("dir", serverCfg.Dir()))

	// 4. Supervisor and observers
	collector := metrics.New(cfg.Metrics)
	opts := append(cfg.Server.Options(),
		supervisor.WithLogger(logg),
		supervisor.WithMetricsCollector(collector),
	)
	sup, err := supervisor.New(serverCfg, opts...)
	if err != nil {
		return err
	}
	poller := status.NewPoller(sup, cfg.Status.Interval, logg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(gctx)
	})

	if cfg.Server.RestartOnChange {
		w := binwatch.New(serverCfg, cfg.Server.ChangeDebounce, sup, poller, logg)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	// 5. Control API
	if cfg.API.Enabled {
		if err := cfg.API.Validate(); err != nil {
			return err
		}
		app, err := newApp(cfg, logg, sup, poller, collector)
		if err != nil {
			return err
		}

		g.Go(func() error {
			logg.Info("Starting control API", zap.String("addr", cfg.API.Addr()))
			if err := app.Listen(cfg.API.Addr()); err != nil {
				return fmt.Errorf("control API failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return app.ShutdownWithTimeout(5 * time.Second)
		})
	}

	// 6. Autostart
	if cfg.Server.Autostart {
		g.Go(func() error {
			if _, err := sup.Start(gctx); err != nil {
				logg.Error("Autostart failed", zap.Error(err))
			}
			poller.Trigger()
			return nil
		})
	}

	runErr := g.Wait()

	// 7. Graceful Shutdown
	logg.Info("Shutting down...")
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.SettlePeriod+cfg.Server.GracePeriod+10*time.Second)
	defer cancel()
	if err := sup.Close(closeCtx); err != nil {
		logg.Error("Failed to stop server on shutdown", zap.Error(err))
		runErr = errors.Join(runErr, err)
	}

	return runErr
}

// newApp builds the control API.
func newApp(cfg *config.Config, logg *zap.Logger, sup *supervisor.Supervisor, poller *status.Poller, collector metrics.Collector) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
	})

	// 1. RayID (Must be first to trace everything)
	app.Use(rayid.New())

	// 2. Request logging with Zap + RayID
	app.Use(requestlog.New(logg))

	// 3. Metrics (Public)
	if pc, ok := collector.(*metrics.PrometheusCollector); ok {
		app.Get("/metrics", adaptor.HTTPHandler(pc.Handler()))
	}

	// 4. Auth (Protect API)
	app.Use(auth.New(auth.Config{ApiKey: cfg.API.ApiKey}))

	mgr := loader.NewManager(logg)
	if err := mgr.Register(server.NewFeature(sup, poller, logg)); err != nil {
		return nil, err
	}
	if err := mgr.Register(status.NewFeature(poller, logg)); err != nil {
		return nil, err
	}
	if err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}

	return app, nil
}
