package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/browser"

	"github.com/rocket-telemetry/dashboard/datasets"
	"github.com/rocket-telemetry/dashboard/domain/diagnostic"
	"github.com/rocket-telemetry/dashboard/pkg/api"
	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/processing"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"github.com/rocket-telemetry/dashboard/pkg/zeromq"
	"github.com/rocket-telemetry/dashboard/services"
)

func main() {
	// Get config directory from environment variable or use default
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}

	bootstrapCfg, err := config.LoadBootstrapConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load bootstrap config: %v", err)
	}

	// PORT overrides the configured HTTP port
	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			log.Fatalf("Invalid PORT %q: %v", p, err)
		}
		bootstrapCfg.Server.HTTPPort = port
	}

	logger, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Bundled CSVs ship inside the binary unless a data directory is configured
	var dataFS fs.FS = datasets.FS
	if bootstrapCfg.Data.Directory != "" {
		dataFS = os.DirFS(bootstrapCfg.Data.Directory)
		logger.Infof("Reading datasets from %s", bootstrapCfg.Data.Directory)
	}
	catalog := telemetry.NewCatalog(dataFS, bootstrapCfg.Datasets, logger)

	layoutService, err := services.NewLayoutService(bootstrapCfg.Data.LayoutFile, logger)
	if err != nil {
		logger.Fatalf("Failed to create layout service: %v", err)
	}

	sessionService := services.NewSessionService(catalog, services.SessionOptions{
		IdleTimeout:      time.Duration(bootstrapCfg.Session.IdleTimeoutMinutes) * time.Minute,
		SweepInterval:    time.Duration(bootstrapCfg.Session.SweepIntervalSeconds) * time.Second,
		PlaybackInterval: time.Duration(bootstrapCfg.Playback.IntervalMs) * time.Millisecond,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionService.Run(ctx)

	// Frame fan-out over ZeroMQ is optional
	var framePool diagnostic.FramePool
	var zmqService *zeromq.ZeroMQService
	var pool *processing.ProcessingPool
	if bootstrapCfg.ZeroMQ.Enabled() {
		zmqService, err = zeromq.NewZeroMQService(bootstrapCfg.ZeroMQ, logger)
		if err != nil {
			logger.Fatalf("Failed to create ZeroMQ service: %v", err)
		}

		layoutPublisher := zeromq.RegisterHandlers(zmqService, catalog, layoutService, logger)
		layoutService.SetPublisher(layoutPublisher)

		if err := zmqService.Start(); err != nil {
			logger.Fatalf("Failed to start ZeroMQ service: %v", err)
		}

		pool = processing.NewProcessingPool("frames", processing.TopicTelemetryFrame,
			bootstrapCfg.Processing.PublishWorkers, bootstrapCfg.Processing.QueueSize, logger)
		pool.SetProcessor(processing.NewFrameEncoder(logger).CreateProcessorFunc())
		pool.SetResultHandler(processing.NewPublishingResultHandler(logger, zmqService).CreateHandlerFunc())
		pool.Start()

		sessionService.SetFrameSink(pool)
		framePool = pool
		logger.Infof("Publishing telemetry frames on %s", bootstrapCfg.ZeroMQ.PublishBindAddress)
	} else {
		logger.Infof("ZeroMQ disabled, telemetry frames are not published")
	}

	app := api.NewApp(api.AppOptions{
		Sessions:    sessionService,
		Layouts:     layoutService,
		Catalog:     catalog,
		Logger:      logger,
		MaxUploadMB: bootstrapCfg.Server.MaxUploadMB,
		RequestLog:  true,
	})

	diagnosticService := diagnostic.NewDiagnosticService(sessionService, catalog, func() string {
		return layoutService.GetLayout().LayoutID
	}, framePool)
	app.Get("/api/v1/diagnostics", diagnosticService.GetMetricsHandler)

	if bootstrapCfg.Server.OpenBrowser {
		app.Hooks().OnListen(func(ld fiber.ListenData) error {
			url := dashboardURL(ld.Host, ld.Port, ld.TLS)
			go func() {
				if err := browser.OpenURL(url); err != nil {
					logger.Warnf("Failed to open browser at %s: %v", url, err)
				}
			}()
			return nil
		})
	}

	addr := net.JoinHostPort(bootstrapCfg.Server.Host, strconv.Itoa(bootstrapCfg.Server.HTTPPort))
	go func() {
		logger.Infof("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	cancel()
	sessionService.Close()
	if pool != nil {
		pool.Stop()
	}
	if zmqService != nil {
		zmqService.Stop()
	}

	logger.Infof("Server exited properly")
}

// dashboardURL is the address a local browser should open for a listener
// bound to host:port. Wildcard binds are reached through localhost.
func dashboardURL(host, port string, tls bool) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "localhost"
	}
	scheme := "http"
	if tls {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/", scheme, net.JoinHostPort(strings.Trim(host, "[]"), port))
}
