// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"context"
	"fmt"

	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
	"github.com/tomtom215/unifi-video-mqtt/internal/nvr"
)

// Publisher is the transport surface the bridge publishes through.
// Implementations must be safe for concurrent use; both pollers
// publish through the same instance. mqtt.Client satisfies this.
type Publisher interface {
	// Publish delivers a message, retained if retain is true, with
	// at-least-once delivery requested of the transport.
	Publish(topic string, payload []byte, retain bool) error
}

// InitialSync performs the one-time blocking attribute fetch that
// populates the store before either poller starts. It does not
// publish: the first real tick of each poller produces the initial
// announce burst, since nothing is marked published yet.
//
// A fetch failure here is returned to the caller and must abort
// startup; the bridge must not enter steady state with an empty,
// never-populated store.
func InitialSync(ctx context.Context, client nvr.API, store *Store) error {
	cameras, err := client.ListCameras(ctx)
	if err != nil {
		return fmt.Errorf("initial camera fetch failed: %w", err)
	}

	snapshot := make(map[string]models.Camera, len(cameras))
	for _, cam := range cameras {
		snapshot[cam.ID] = cam
	}
	store.ReplaceCameras(snapshot)

	logging.Info().Int("cameras", len(snapshot)).Msg("Initial sync complete")
	return nil
}
