// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package ops serves the operational HTTP surface: health probes and
// Prometheus metrics. It is deliberately unauthenticated and meant to
// be bound to an internal interface only.
package ops

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/unifi-video-mqtt/internal/config"
	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
)

// BrokerStatus reports whether the MQTT session is up.
// Satisfied by *mqtt.Client.
type BrokerStatus interface {
	IsConnected() bool
}

// CameraInventory reports the ids currently mirrored.
// Satisfied by *bridge.Store.
type CameraInventory interface {
	KnownCameraIDs() []string
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status        string `json:"status"`
	MQTTConnected bool   `json:"mqtt_connected"`
	Cameras       int    `json:"cameras"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Server is the ops endpoint.
type Server struct {
	broker    BrokerStatus
	inventory CameraInventory
	startedAt time.Time
}

// NewServer creates the ops endpoint over the given status sources.
func NewServer(broker BrokerStatus, inventory CameraInventory) *Server {
	return &Server{
		broker:    broker,
		inventory: inventory,
		startedAt: time.Now(),
	}
}

// Handler builds the chi router for the ops surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// HTTPServer builds the net/http server for the configured listen
// address, ready to be wrapped as a supervised service.
func (s *Server) HTTPServer(cfg *config.OpsConfig) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// handleHealth reports liveness plus a coarse readiness snapshot. The
// status is "ok" whenever the process can answer; broker and camera
// details let an operator distinguish a dead broker from an empty NVR.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		MQTTConnected: s.broker.IsConnected(),
		Cameras:       len(s.inventory.KnownCameraIDs()),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("[ops] Failed to write health response")
	}
}
