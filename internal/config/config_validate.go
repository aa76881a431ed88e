// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateNVR(); err != nil {
		return err
	}

	if err := c.validateMQTT(); err != nil {
		return err
	}

	if err := c.validateBridge(); err != nil {
		return err
	}

	if err := c.validateOps(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateNVR validates the NVR connection settings.
func (c *Config) validateNVR() error {
	if c.NVR.Name == "" {
		return fmt.Errorf("NVR_NAME is required (topic-root segment)")
	}
	if strings.ContainsAny(c.NVR.Name, "/+#") {
		return fmt.Errorf("NVR_NAME must not contain MQTT topic separators or wildcards: %q", c.NVR.Name)
	}
	if c.NVR.URL == "" {
		return fmt.Errorf("NVR_HOST is required")
	}
	if err := validateHTTPURL(c.NVR.URL, "NVR_HOST"); err != nil {
		return err
	}
	if c.NVR.Username == "" || c.NVR.Password == "" {
		return fmt.Errorf("NVR_USERNAME and NVR_PASSWORD are required")
	}
	if c.NVR.Timeout <= 0 {
		return fmt.Errorf("NVR_TIMEOUT must be positive, got %v", c.NVR.Timeout)
	}
	return nil
}

// validateMQTT validates the broker settings.
func (c *Config) validateMQTT() error {
	if c.MQTT.BrokerURL == "" {
		return fmt.Errorf("BROKER_URL is required")
	}
	u, err := url.Parse(c.MQTT.BrokerURL)
	if err != nil {
		return fmt.Errorf("BROKER_URL is invalid: %w", err)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "ws", "wss":
	default:
		return fmt.Errorf("BROKER_URL scheme must be tcp, ssl, tls, ws or wss, got %q", u.Scheme)
	}
	if c.MQTT.ClientID == "" {
		return fmt.Errorf("MQTT_CLIENT_ID must not be empty")
	}
	return nil
}

// validateBridge validates the reconciliation intervals.
func (c *Config) validateBridge() error {
	if c.Bridge.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %v", c.Bridge.RefreshInterval)
	}
	if c.Bridge.MotionRefreshInterval <= 0 {
		return fmt.Errorf("DETECT_MOTION_REFRESH_INTERVAL must be positive, got %v", c.Bridge.MotionRefreshInterval)
	}
	if c.Bridge.MotionLookback <= 0 {
		return fmt.Errorf("MOTION_LOOKBACK must be positive, got %v", c.Bridge.MotionLookback)
	}
	return nil
}

// validateOps validates the ops endpoint settings.
func (c *Config) validateOps() error {
	if !c.Ops.Enabled {
		return nil
	}
	if c.Ops.Port < 1 || c.Ops.Port > 65535 {
		return fmt.Errorf("OPS_PORT must be in 1-65535, got %d", c.Ops.Port)
	}
	return nil
}

// validateLogging validates the logging settings.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that a URL is well formed http(s) with a host.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
