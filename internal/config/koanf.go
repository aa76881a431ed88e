// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/unifi-video-mqtt/config.yaml",
	"/etc/unifi-video-mqtt/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
// defaults, then an optional YAML config file, then environment
// variables (highest priority). The result is validated before return.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variable names are mapped to koanf paths:
	// NVR_HOST -> nvr.url, BROKER_URL -> mqtt.broker_url, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring CONFIG_PATH first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables return "" and are skipped, so random
// environment variables cannot pollute the config.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// NVR mappings; NVR_DISABLE_SSL_CHECK matches the knob the
		// original Windows service exposed.
		"nvr_name":              "nvr.name",
		"nvr_host":              "nvr.url",
		"nvr_url":               "nvr.url",
		"nvr_username":          "nvr.username",
		"nvr_password":          "nvr.password",
		"nvr_disable_ssl_check": "nvr.insecure_skip_verify",
		"nvr_timeout":           "nvr.timeout",

		// Broker mappings
		"broker_url":      "mqtt.broker_url",
		"broker_username": "mqtt.username",
		"broker_password": "mqtt.password",
		"mqtt_client_id":  "mqtt.client_id",

		// Bridge mappings
		"refresh_interval":               "bridge.refresh_interval",
		"detect_motion_refresh_interval": "bridge.motion_refresh_interval",
		"motion_lookback":                "bridge.motion_lookback",

		// Ops mappings
		"ops_enabled": "ops.enabled",
		"ops_host":    "ops.host",
		"ops_port":    "ops.port",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
