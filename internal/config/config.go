// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package config loads and validates bridge configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
package config

import "time"

// Config is the root configuration for the bridge process.
type Config struct {
	NVR     NVRConfig     `koanf:"nvr"`
	MQTT    MQTTConfig    `koanf:"mqtt"`
	Bridge  BridgeConfig  `koanf:"bridge"`
	Ops     OpsConfig     `koanf:"ops"`
	Logging LoggingConfig `koanf:"logging"`
}

// NVRConfig holds UniFi Video NVR connection settings.
type NVRConfig struct {
	// Name is the NVR instance name used as the topic-root segment:
	// unifi/video/{name}/...
	Name string `koanf:"name"`

	// URL is the NVR base URL, e.g. https://nvr.local:7443
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// InsecureSkipVerify disables TLS certificate verification.
	// UniFi Video ships with a self-signed certificate, so this is
	// commonly needed on local installs.
	InsecureSkipVerify bool `koanf:"insecure_skip_verify"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	// BrokerURL is the broker address, e.g. tcp://localhost:1883 or
	// ssl://broker:8883.
	BrokerURL string `koanf:"broker_url"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`

	// ClientID is the MQTT client identifier. A random suffix is
	// appended at connect time to avoid takeover on restart races.
	ClientID string `koanf:"client_id"`
}

// BridgeConfig holds the reconciliation intervals.
type BridgeConfig struct {
	// RefreshInterval is how often camera attributes and record modes
	// are refreshed from the NVR.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// MotionRefreshInterval is how often motion recordings are polled.
	// Independent of RefreshInterval.
	MotionRefreshInterval time.Duration `koanf:"motion_refresh_interval"`

	// MotionLookback is the recording query window: recordings whose
	// time window covers [now-lookback, now] are considered.
	MotionLookback time.Duration `koanf:"motion_lookback"`
}

// OpsConfig holds the operational HTTP endpoint settings (health, metrics).
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		NVR: NVRConfig{
			Name:               "",
			URL:                "",
			Username:           "",
			Password:           "",
			InsecureSkipVerify: false,
			Timeout:            30 * time.Second,
		},
		MQTT: MQTTConfig{
			BrokerURL: "tcp://127.0.0.1:1883",
			ClientID:  "unifi-video-mqtt",
		},
		Bridge: BridgeConfig{
			RefreshInterval:       60 * time.Second,
			MotionRefreshInterval: 10 * time.Second,
			MotionLookback:        30 * time.Minute,
		},
		Ops: OpsConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    9811,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
