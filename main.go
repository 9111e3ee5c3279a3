package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vda5050-simulator/config"
	"vda5050-simulator/logging"
	"vda5050-simulator/statusapi"
	"vda5050-simulator/supervisor"
)

func main() {
	logging.Logger.Info("Starting VDA 5050 vehicle simulator...")

	// ===================================================================
	// 1. LOAD CONFIGURATION
	// ===================================================================
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel)
	logging.Logger.Info("Configuration loaded successfully")

	// ===================================================================
	// 2. SPAWN THE VEHICLE FLEET
	// ===================================================================
	sup := supervisor.New(cfg, logging.Logger)
	logging.Logger.Infof("Spawned %d vehicle(s)", sup.RobotCount())

	sup.Run()
	logging.Logger.Info("Vehicle MQTT adapters started")

	// ===================================================================
	// 3. START THE STATUS API
	// ===================================================================
	handler := statusapi.NewHandler(sup.Registry(), logging.Logger.WithField("component", "statusapi"))
	server := statusapi.NewServer(cfg.StatusAPI.ListenAddr, handler)

	go func() {
		logging.Logger.Infof("Status API listening on %s", cfg.StatusAPI.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("status API server failed: %v", err)
		}
	}()

	// ===================================================================
	// 4. GRACEFUL SHUTDOWN
	// ===================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Shutdown signal received, stopping simulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Logger.Warnf("status API shutdown error: %v", err)
	}

	sup.Stop()
	logging.Logger.Info("Simulator stopped gracefully")
}
