// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

/*
client.go - UniFi Video REST API client

Implements the typed client facade against the UniFi Video 2.0 API:
camera enumeration, recording queries and record-mode updates.
Authentication is cookie-session based; the client logs in lazily and
re-authenticates once on a 401 before failing a request.
*/

// Package nvr provides the typed client facade for the UniFi Video NVR.
package nvr

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/unifi-video-mqtt/internal/config"
	"github.com/tomtom215/unifi-video-mqtt/internal/metrics"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
)

// API is the contract the reconciliation core consumes. Both Client and
// CircuitBreakerClient implement it. Implementations must be safe for
// concurrent use: both pollers and the command dispatcher call into the
// same instance.
type API interface {
	// ListCameras enumerates all cameras known to the NVR.
	ListCameras(ctx context.Context) ([]models.Camera, error)

	// ListRecordings returns recordings of the given event types whose
	// time window overlaps [from, to], limited to the given camera ids.
	ListRecordings(ctx context.Context, from, to time.Time, cameraIDs []string, eventTypes []string) ([]models.Recording, error)

	// SetRecordMode updates a camera's recording settings to match the
	// given mode.
	SetRecordMode(ctx context.Context, cameraID string, mode models.RecordMode) error
}

// Ensure Client implements API.
var _ API = (*Client)(nil)

// Client talks to the UniFi Video 2.0 REST API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	// loginMu serializes re-authentication so concurrent 401s trigger
	// a single login round-trip.
	loginMu sync.Mutex
}

// NewClient creates a UniFi Video API client from config. The TLS-skip
// flag accommodates the self-signed certificate UniFi Video ships with.
func NewClient(cfg *config.NVRConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in for self-signed NVR certs
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
		},
	}, nil
}

// Login authenticates against the NVR and stores the session cookie.
// Callers normally do not need this; requests re-authenticate on 401.
// Bootstrap calls it once so a bad credential fails startup loudly.
func (c *Client) Login(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	return c.login(ctx)
}

// login performs the credential exchange (must hold loginMu).
func (c *Client) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"email":    c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/2.0/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nvr login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nvr login returned status %d", resp.StatusCode)
	}
	return nil
}

// ListCameras enumerates all cameras known to the NVR.
func (c *Client) ListCameras(ctx context.Context) ([]models.Camera, error) {
	const op = "list_cameras"
	timer := time.Now()

	var response struct {
		Data []models.Camera `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/2.0/camera", nil, &response); err != nil {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("nvr camera list failed: %w", err)
	}
	metrics.NVRRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())

	cameras := make([]models.Camera, 0, len(response.Data))
	for _, cam := range response.Data {
		// Boundary validation: a camera without an id cannot be
		// tracked or addressed and is dropped here, not downstream.
		if cam.ID == "" {
			continue
		}
		cameras = append(cameras, cam)
	}
	return cameras, nil
}

// wireRecording is the NVR's recording JSON shape. Times are epoch
// milliseconds.
type wireRecording struct {
	ID         string   `json:"_id"`
	Cameras    []string `json:"cameras"`
	EventType  string   `json:"eventType"`
	InProgress bool     `json:"inProgress"`
	StartTime  int64    `json:"startTime"`
	EndTime    int64    `json:"endTime"`
}

// ListRecordings returns recordings of the given event types whose time
// window overlaps [from, to], limited to the given camera ids.
func (c *Client) ListRecordings(ctx context.Context, from, to time.Time, cameraIDs []string, eventTypes []string) ([]models.Recording, error) {
	const op = "list_recordings"
	timer := time.Now()

	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))
	params.Set("sortBy", "startTime")
	params.Set("sort", "desc")
	for _, id := range cameraIDs {
		params.Add("cameras[]", id)
	}
	for _, et := range eventTypes {
		params.Add("cause[]", et)
	}

	var response struct {
		Data []wireRecording `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/2.0/recording", params, &response); err != nil {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("nvr recording list failed: %w", err)
	}
	metrics.NVRRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())

	recordings := make([]models.Recording, 0, len(response.Data))
	for _, rec := range response.Data {
		// Boundary validation: recordings without a camera reference
		// cannot be attributed and are dropped here.
		if len(rec.Cameras) == 0 {
			continue
		}
		recordings = append(recordings, models.Recording{
			ID:         rec.ID,
			CameraID:   rec.Cameras[0],
			EventType:  rec.EventType,
			InProgress: rec.InProgress,
			Start:      time.UnixMilli(rec.StartTime),
			End:        time.UnixMilli(rec.EndTime),
		})
	}
	return recordings, nil
}

// SetRecordMode updates a camera's recording settings to match the mode.
// The NVR API updates whole camera documents, so this is a
// read-modify-write: fetch the camera, rewrite the two booleans, put it
// back.
func (c *Client) SetRecordMode(ctx context.Context, cameraID string, mode models.RecordMode) error {
	const op = "set_record_mode"
	timer := time.Now()

	var fetched struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/2.0/camera/"+url.PathEscape(cameraID), nil, &fetched); err != nil {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("nvr camera fetch for %s failed: %w", cameraID, err)
	}
	if len(fetched.Data) == 0 {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("nvr camera %s not found", cameraID)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(fetched.Data[0], &doc); err != nil {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("failed to decode camera %s: %w", cameraID, err)
	}

	settings, _ := doc["recordingSettings"].(map[string]interface{})
	if settings == nil {
		settings = make(map[string]interface{})
	}
	settings["fullTimeRecordEnabled"] = mode == models.RecordModeAlways
	settings["motionRecordEnabled"] = mode == models.RecordModeMotion
	doc["recordingSettings"] = settings

	if err := c.putJSON(ctx, "/api/2.0/camera/"+url.PathEscape(cameraID), doc); err != nil {
		metrics.NVRRequestErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("nvr camera update for %s failed: %w", cameraID, err)
	}
	metrics.NVRRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())
	return nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	resp, err := c.doAuthenticated(ctx, http.MethodGet, endpoint, params, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("nvr returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode nvr response: %w", err)
	}
	return nil
}

// putJSON performs an authenticated PUT with a JSON body.
func (c *Client) putJSON(ctx context.Context, endpoint string, body interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := c.doAuthenticated(ctx, http.MethodPut, endpoint, nil, encoded)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nvr returned status %d", resp.StatusCode)
	}
	return nil
}

// doAuthenticated performs a request, logging in and retrying exactly
// once if the session cookie has expired.
func (c *Client) doAuthenticated(ctx context.Context, method, endpoint string, params url.Values, body []byte) (*http.Response, error) {
	resp, err := c.doRequest(ctx, method, endpoint, params, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		c.loginMu.Lock()
		err = c.login(ctx)
		c.loginMu.Unlock()
		if err != nil {
			return nil, err
		}

		return c.doRequest(ctx, method, endpoint, params, body)
	}

	return resp, nil
}

// doRequest performs a single HTTP request against the NVR.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body []byte) (*http.Response, error) {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build nvr request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nvr request failed: %w", err)
	}
	return resp, nil
}
