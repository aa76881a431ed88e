// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package main is the entry point for the UniFi Video MQTT bridge.
//
// The bridge mirrors camera state from a UniFi Video NVR into retained
// MQTT topics and applies inbound MQTT commands back to the NVR.
//
// # Application Architecture
//
// The process initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. NVR client: Authenticate against the UniFi Video 2.0 API, wrapped in a circuit breaker
//  3. MQTT: Connect to the broker via Eclipse Paho with auto-reconnect
//  4. Initial sync: Fetch the camera list so inbound commands resolve immediately
//  5. Command subscription: Wildcard subscription on the command filter
//  6. Supervisor tree: Attribute poller, motion poller and ops endpoint under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (NVR_NAME, NVR_HOST, BROKER_URL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Topic Layout
//
// All topics live under unifi/video/{nvr_name}:
//
//	unifi/video/{nvr_name}/camera/{slug}/motion          "open" | "close"
//	unifi/video/{nvr_name}/camera/{slug}/recordMode      "none" | "always" | "motion"
//	unifi/video/{nvr_name}/camera/{slug}/recordMode/set  inbound command
//
// # Signal Handling
//
// The bridge handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops both pollers and the ops endpoint via the supervisor tree
//   - Disconnects from the broker with a short drain period
//   - Retained topics are left in place for the next run
//
// # Example Usage
//
//	export NVR_NAME=home
//	export NVR_HOST=https://nvr.local:7443
//	export NVR_USERNAME=admin
//	export NVR_PASSWORD=secret
//	export BROKER_URL=tcp://mosquitto:1883
//	./unifi-video-mqtt
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/unifi-video-mqtt/internal/bridge"
	"github.com/tomtom215/unifi-video-mqtt/internal/config"
	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/mqtt"
	"github.com/tomtom215/unifi-video-mqtt/internal/nvr"
	"github.com/tomtom215/unifi-video-mqtt/internal/ops"
	"github.com/tomtom215/unifi-video-mqtt/internal/supervisor"
	"github.com/tomtom215/unifi-video-mqtt/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("nvr", cfg.NVR.Name).
		Str("nvr_url", cfg.NVR.URL).
		Str("broker", cfg.MQTT.BrokerURL).
		Msg("Starting UniFi Video MQTT bridge")

	// NVR client with circuit breaker for fault tolerance. The breaker
	// prevents hammering an NVR that is down or mid-upgrade.
	baseClient, err := nvr.NewClient(&cfg.NVR)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create NVR client")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := baseClient.Login(ctx); err != nil {
		// Not fatal: the session is re-established on the first 401.
		logging.Warn().Err(err).Msg("Initial NVR login failed (will retry on first request)")
	}
	nvrClient := nvr.NewCircuitBreakerClient(baseClient)

	// MQTT transport. Connect failure is fatal: without a broker the
	// bridge has nothing to do, and the supervisor cannot help because
	// paho owns reconnection once the first session exists.
	broker, err := mqtt.Connect(&cfg.MQTT)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MQTT broker")
	}
	defer broker.Close()

	topics := bridge.NewTopics(cfg.NVR.Name)
	store := bridge.NewStore()
	defer store.Close()

	// Initial sync fills the store before any command can arrive, so
	// slug resolution works from the first inbound message. Nothing is
	// published here; the first attribute tick announces every camera.
	if err := bridge.InitialSync(ctx, nvrClient, store); err != nil {
		logging.Fatal().Err(err).Msg("Initial camera sync failed")
	}

	dispatcher := bridge.NewDispatcher(nvrClient, store, topics)
	if err := broker.Subscribe(topics.CommandFilter(), dispatcher.HandleMessage); err != nil {
		logging.Fatal().Err(err).Msg("Failed to subscribe to command topics")
	}

	attributePoller := bridge.NewAttributePoller(nvrClient, store, broker, topics, cfg.Bridge.RefreshInterval)
	motionPoller := bridge.NewMotionPoller(nvrClient, store, broker, topics, cfg.Bridge.MotionRefreshInterval, cfg.Bridge.MotionLookback)

	// Supervisor tree: pollers and the ops endpoint restart
	// independently on failure.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddPollerService(attributePoller)
	tree.AddPollerService(motionPoller)

	if cfg.Ops.Enabled {
		opsServer := ops.NewServer(broker, store)
		tree.AddOpsService(services.NewHTTPServerService(opsServer.HTTPServer(&cfg.Ops), 10*time.Second))
		logging.Info().Str("host", cfg.Ops.Host).Int("port", cfg.Ops.Port).Msg("Ops endpoint enabled")
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Bridge stopped gracefully")
}
