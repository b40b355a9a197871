package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/K-vibe-sat-canh/autoscaling/internal/loadgen"
	"github.com/K-vibe-sat-canh/autoscaling/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9000, "port to listen on")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "")
	logger.Infof("Starting load generator on port %d", *port)

	service := loadgen.New(loadgen.Config{Port: *port})
	if err := service.Start(); err != nil {
		return fmt.Errorf("failed to start load generator: %w", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdownChan
	logger.Infof("Received signal %v, shutting down", sig)

	if err := service.Stop(); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Load generator stopped")
	return nil
}
