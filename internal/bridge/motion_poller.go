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

// MotionPoller periodically fetches motion recordings from the NVR and
// publishes open/close transitions per camera as retained messages.
//
// A camera is "open" when any fetched recording for it is still in
// progress, "closed" otherwise. Only transitions (and the first
// observation of each camera) are published.
//
// Runs on its own interval, independent of the attribute poller; the
// overlap policy is the same skip-if-busy. Slugs are resolved from the
// current attribute snapshot at publish time, so a rename landing
// between the two pollers' ticks can briefly publish motion under the
// old slug; the retained record-mode topic corrects the identity on
// the next attribute tick.
type MotionPoller struct {
	client    nvr.API
	store     *Store
	publisher Publisher
	topics    Topics
	interval  time.Duration
	lookback  time.Duration

	// Runtime state
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	inFlight atomic.Bool

	// now is a clock hook for tests.
	now func() time.Time
}

// NewMotionPoller creates a motion detection poller. lookback is the
// recording query window (the original service used 30 minutes).
func NewMotionPoller(client nvr.API, store *Store, publisher Publisher, topics Topics, interval, lookback time.Duration) *MotionPoller {
	return &MotionPoller{
		client:    client,
		store:     store,
		publisher: publisher,
		topics:    topics,
		interval:  interval,
		lookback:  lookback,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

// Start begins the polling loop.
func (p *MotionPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	logging.Info().Dur("interval", p.interval).Dur("lookback", p.lookback).Msg("Starting motion poller")

	p.wg.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Serve implements suture.Service for supervisor integration.
func (p *MotionPoller) Serve(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	p.Stop()
	return ctx.Err()
}

// Stop gracefully stops the polling loop.
func (p *MotionPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.Info().Msg("[motion-poller] Stopped")
}

// IsRunning returns whether the poller is active.
func (p *MotionPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// pollLoop is the main polling loop.
func (p *MotionPoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("[motion-poller] Context canceled, stopping")
			return
		case <-p.stopChan:
			logging.Info().Msg("[motion-poller] Stop signal received")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll executes one motion detection tick. Fetch failures abandon the
// tick without publishing; the next tick retries independently.
func (p *MotionPoller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollSkipped.WithLabelValues("motion").Inc()
		logging.Debug().Msg("[motion-poller] Previous tick still running, skipping")
		return
	}
	defer p.inFlight.Store(false)

	ids := p.store.KnownCameraIDs()
	if len(ids) == 0 {
		return
	}

	started := p.now()

	recordings, err := p.client.ListRecordings(ctx,
		started.Add(-p.lookback), started, ids, []string{models.RecordingEventMotion})
	if err != nil {
		metrics.PollErrors.WithLabelValues("motion").Inc()
		logging.Warn().Err(err).Msg("[motion-poller] Failed to fetch recordings, abandoning tick")
		return
	}

	open := make(map[string]bool)
	for _, rec := range recordings {
		if rec.InProgress {
			open[rec.CameraID] = true
		}
	}

	for _, id := range ids {
		state := models.MotionClosed
		if open[id] {
			state = models.MotionOpen
		}

		last, published := p.store.LastMotionState(id)
		if published && last == state {
			continue
		}

		slug, ok := p.store.Slug(id)
		if !ok {
			continue
		}

		if err := p.publisher.Publish(p.topics.Motion(slug), []byte(state), true); err != nil {
			metrics.PublishErrors.WithLabelValues(metrics.KindMotion).Inc()
			logging.Warn().Err(err).Str("camera", slug).Msg("[motion-poller] Failed to publish motion state")
			continue
		}

		p.store.RecordMotionState(id, state)
		metrics.Publishes.WithLabelValues(metrics.KindMotion).Inc()
		logging.Debug().Str("camera", slug).Str("state", string(state)).Msg("Published motion state")
	}

	metrics.PollDuration.WithLabelValues("motion").Observe(time.Since(started).Seconds())
}
