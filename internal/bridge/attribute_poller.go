// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/metrics"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
	"github.com/tomtom215/unifi-video-mqtt/internal/nvr"
)

// AttributePoller periodically fetches the full camera list from the
// NVR, diffs it against the store and publishes record-mode deltas as
// retained messages.
//
// Overlap policy is skip-if-busy: if a fetch outlives the tick
// interval, re-fires are skipped (and counted) rather than allowed to
// run concurrent fetches against the store.
//
// Cameras that disappear from the NVR are not retracted from the topic
// bus; they simply stop being refreshed. This mirrors the retained-
// message model: the last known value stays valid until replaced.
type AttributePoller struct {
	client    nvr.API
	store     *Store
	publisher Publisher
	topics    Topics
	interval  time.Duration

	// Runtime state
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	// inFlight implements the skip-if-busy overlap policy.
	inFlight atomic.Bool
}

// NewAttributePoller creates an attribute refresh poller.
func NewAttributePoller(client nvr.API, store *Store, publisher Publisher, topics Topics, interval time.Duration) *AttributePoller {
	return &AttributePoller{
		client:    client,
		store:     store,
		publisher: publisher,
		topics:    topics,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the polling loop.
func (p *AttributePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	logging.Info().Dur("interval", p.interval).Msg("Starting attribute poller")

	p.wg.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Serve implements suture.Service for supervisor integration.
func (p *AttributePoller) Serve(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

// Stop gracefully stops the polling loop, waiting for an in-flight
// tick to finish.
func (p *AttributePoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.Info().Msg("[attribute-poller] Stopped")
}

// IsRunning returns whether the poller is active.
func (p *AttributePoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// pollLoop is the main polling loop.
func (p *AttributePoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	// Do an initial poll immediately; this produces the announce burst
	// after the non-publishing initial sync.
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("[attribute-poller] Context canceled, stopping")
			return
		case <-p.stopChan:
			logging.Info().Msg("[attribute-poller] Stop signal received")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll executes one attribute refresh tick. Fetch failures abandon the
// tick without mutating the store or publishing; the next tick retries
// independently.
func (p *AttributePoller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollSkipped.WithLabelValues("attribute").Inc()
		logging.Debug().Msg("[attribute-poller] Previous tick still running, skipping")
		return
	}
	defer p.inFlight.Store(false)

	started := time.Now()

	cameras, err := p.client.ListCameras(ctx)
	if err != nil {
		metrics.PollErrors.WithLabelValues("attribute").Inc()
		logging.Warn().Err(err).Msg("[attribute-poller] Failed to fetch cameras, abandoning tick")
		return
	}

	snapshot := make(map[string]models.Camera, len(cameras))
	for _, cam := range cameras {
		snapshot[cam.ID] = cam
	}

	changed := p.store.ReplaceCameras(snapshot)
	for _, id := range changed {
		cam := snapshot[id]

		slug, ok := p.store.Slug(id)
		if !ok {
			// Collision-excluded or empty slug; already logged by the store.
			continue
		}

		mode := cam.RecordMode()
		if err := p.publisher.Publish(p.topics.RecordMode(slug), []byte(mode), true); err != nil {
			metrics.PublishErrors.WithLabelValues(metrics.KindRecordMode).Inc()
			logging.Warn().Err(err).Str("camera", slug).Msg("[attribute-poller] Failed to publish record mode")
			// Not recorded as published; the next tick retries.
			continue
		}

		p.store.RecordPublishedMode(id, mode)
		metrics.Publishes.WithLabelValues(metrics.KindRecordMode).Inc()
		logging.Debug().Str("camera", slug).Str("mode", string(mode)).Msg("Published record mode")
	}

	metrics.PollDuration.WithLabelValues("attribute").Observe(time.Since(started).Seconds())
}
