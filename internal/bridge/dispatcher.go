// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"context"
	"time"

	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/metrics"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
	"github.com/tomtom215/unifi-video-mqtt/internal/nvr"
)

// commandTimeout bounds the NVR call made for an inbound command.
const commandTimeout = 30 * time.Second

// Dispatcher translates inbound command-topic messages into NVR
// mutations. Malformed or unresolvable messages are logged and dropped
// without surfacing errors to the transport; a failed NVR call is not
// retried, and the next attribute refresh reflects whatever state the
// NVR actually ended up in.
type Dispatcher struct {
	client nvr.API
	store  *Store
	topics Topics
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(client nvr.API, store *Store, topics Topics) *Dispatcher {
	return &Dispatcher{client: client, store: store, topics: topics}
}

// HandleMessage is the transport inbound callback, registered against
// the command wildcard filter. Safe for concurrent invocation.
func (d *Dispatcher) HandleMessage(topic string, payload []byte) {
	slug, subtopic, ok := d.topics.ParseCommand(topic)
	if !ok {
		metrics.Commands.WithLabelValues(metrics.CommandDropped).Inc()
		logging.Debug().Str("topic", topic).Msg("Dropping message on unrecognized topic shape")
		return
	}

	if subtopic != SubtopicRecordMode {
		metrics.Commands.WithLabelValues(metrics.CommandDropped).Inc()
		logging.Debug().Str("topic", topic).Str("subtopic", subtopic).Msg("Dropping command for unrecognized subtopic")
		return
	}

	id, ok := d.store.ResolveSlugToID(slug)
	if !ok {
		metrics.Commands.WithLabelValues(metrics.CommandDropped).Inc()
		logging.Debug().Str("slug", slug).Msg("Dropping command for unknown camera slug")
		return
	}

	mode := models.ParseRecordMode(string(payload))

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := d.client.SetRecordMode(ctx, id, mode); err != nil {
		metrics.Commands.WithLabelValues(metrics.CommandFailed).Inc()
		logging.Error().Err(err).Str("camera", slug).Str("mode", string(mode)).Msg("Failed to set record mode")
		return
	}

	metrics.Commands.WithLabelValues(metrics.CommandApplied).Inc()
	logging.Info().Str("camera", slug).Str("mode", string(mode)).Msg("Applied record mode command")
}
