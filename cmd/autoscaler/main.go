package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/K-vibe-sat-canh/autoscaling/api"
	"github.com/K-vibe-sat-canh/autoscaling/internal/loadsource"
	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
	"github.com/K-vibe-sat-canh/autoscaling/internal/metrics"
	"github.com/K-vibe-sat-canh/autoscaling/internal/orchestrator"
	"github.com/K-vibe-sat-canh/autoscaling/internal/resilience"
	"github.com/K-vibe-sat-canh/autoscaling/internal/scaler"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/config"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database"
	"github.com/K-vibe-sat-canh/autoscaling/pkg/database/queries"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	metricsPort := flag.Int("metrics-port", 9090, "port for the metrics endpoint, 0 disables it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s %s in %s mode", cfg.App.Name, version, cfg.App.Mode)

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")

		migrationTimeout := cfg.Database.MigrationTimeout
		if migrationTimeout <= 0 {
			migrationTimeout = 60 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		if *migrate {
			logger.Info("Migrations completed successfully")
			return nil
		}
	} else {
		logger.Warn("Database persistence is disabled")
		if *migrate {
			return errors.New("cannot migrate: database is disabled")
		}
	}

	orch := orchestrator.New(cfg, db)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}
	defer orch.Stop()

	if db != nil {
		if err := resumeFleets(cfg, db, orch); err != nil {
			logger.Errorf("Failed to resume fleets: %v", err)
		}
	}

	if *metricsPort > 0 {
		metrics.StartServer(*metricsPort)
	}

	server := api.NewServer(cfg, db, orch, version)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// resumeFleets restarts scaling pipelines for every fleet that was active
// when the service last stopped.
func resumeFleets(cfg *config.Config, db *database.DB, orch *orchestrator.Orchestrator) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fleetRepo := queries.NewFleetRepository(db.DB)
	fleets, err := fleetRepo.GetActive(ctx)
	if err != nil {
		return err
	}

	for _, fleet := range fleets {
		source := buildLoadSource(cfg.LoadSource)

		scal := scaler.NewSimulatedScaler(scaler.SimulatedScalerConfig{
			ProvisionTime: cfg.Scaler.ProvisionTime,
			DrainTimeout:  cfg.Scaler.DrainTimeout,
		})
		scal.InitializeFleet(fleet.ID, fleet.Policy.MinServers)

		if err := orch.StartFleet(fleet, source, scal); err != nil {
			logger.WithFleet(fleet.ID).Errorf("Failed to resume fleet: %v", err)
			continue
		}
		logger.WithFleet(fleet.ID).Info("Resumed fleet pipeline")
	}

	logger.Infof("Resumed %d active fleet(s)", len(orch.ListRunningFleets()))
	return nil
}

func buildLoadSource(cfg config.LoadSourceConfig) loadsource.Source {
	var source loadsource.Source
	switch cfg.Type {
	case "mock":
		source = loadsource.NewMockSource(loadsource.MockSourceConfig{})
	default:
		source = loadsource.NewHTTPSource(loadsource.HTTPSourceConfig{
			Endpoint: cfg.Endpoint + "/load",
			Timeout:  cfg.Timeout,
		})
	}

	return loadsource.NewResilientSource(loadsource.ResilientSourceConfig{
		Source:        source,
		MaxFailures:   cfg.CircuitBreaker.MaxFailures,
		Timeout:       cfg.CircuitBreaker.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.Get().SetCircuitBreakerState(name, int(to))
		},
	})
}
