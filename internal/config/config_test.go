// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package config

import (
	"testing"
	"time"
)

// validConfig returns a config that passes validation, for mutation in
// individual tests.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.NVR.Name = "home"
	cfg.NVR.URL = "https://nvr.local:7443"
	cfg.NVR.Username = "admin"
	cfg.NVR.Password = "secret"
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateNVR(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing name", func(c *Config) { c.NVR.Name = "" }},
		{"name with slash", func(c *Config) { c.NVR.Name = "a/b" }},
		{"name with wildcard", func(c *Config) { c.NVR.Name = "nvr+" }},
		{"missing url", func(c *Config) { c.NVR.URL = "" }},
		{"bad scheme", func(c *Config) { c.NVR.URL = "ftp://nvr.local" }},
		{"missing host", func(c *Config) { c.NVR.URL = "https://" }},
		{"missing username", func(c *Config) { c.NVR.Username = "" }},
		{"missing password", func(c *Config) { c.NVR.Password = "" }},
		{"zero timeout", func(c *Config) { c.NVR.Timeout = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateMQTT(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"missing broker url", func(c *Config) { c.MQTT.BrokerURL = "" }, false},
		{"http scheme rejected", func(c *Config) { c.MQTT.BrokerURL = "http://broker:1883" }, false},
		{"empty client id", func(c *Config) { c.MQTT.ClientID = "" }, false},
		{"ssl scheme accepted", func(c *Config) { c.MQTT.BrokerURL = "ssl://broker:8883" }, true},
		{"ws scheme accepted", func(c *Config) { c.MQTT.BrokerURL = "ws://broker:9001" }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateBridgeIntervals(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Bridge.RefreshInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero refresh interval")
	}

	cfg = validConfig()
	cfg.Bridge.MotionRefreshInterval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative motion refresh interval")
	}

	cfg = validConfig()
	cfg.Bridge.MotionLookback = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero motion lookback")
	}
}

func TestDefaultsMatchOriginalService(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.Bridge.MotionLookback != 30*time.Minute {
		t.Errorf("motion lookback = %v, want 30m", cfg.Bridge.MotionLookback)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Ops.Enabled {
		t.Error("ops endpoint should be enabled by default")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"NVR_HOST", "nvr.url"},
		{"NVR_DISABLE_SSL_CHECK", "nvr.insecure_skip_verify"},
		{"BROKER_URL", "mqtt.broker_url"},
		{"REFRESH_INTERVAL", "bridge.refresh_interval"},
		{"DETECT_MOTION_REFRESH_INTERVAL", "bridge.motion_refresh_interval"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		tt := tt
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
