// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package models defines the domain types shared across the bridge:
// cameras, recordings, record modes and motion states.
//
// These are strongly-typed representations validated at the NVR client
// boundary; nothing downstream of the client branches on untyped data.
package models

import "time"

// RecordingSettings holds the two NVR-side booleans that determine a
// camera's record mode.
type RecordingSettings struct {
	FullTimeRecordEnabled bool `json:"fullTimeRecordEnabled"`
	MotionRecordEnabled   bool `json:"motionRecordEnabled"`
}

// Camera is the bridge's view of an NVR camera. The ID is the NVR's
// stable opaque identifier; Name is the operator-assigned display name
// the topic slug is derived from.
type Camera struct {
	ID                string            `json:"_id"`
	Name              string            `json:"name"`
	RecordingSettings RecordingSettings `json:"recordingSettings"`
}

// RecordMode is a camera's recording policy as exposed on the topic bus.
type RecordMode string

// Record mode payload vocabulary. These strings are the MQTT wire values.
const (
	RecordModeNone   RecordMode = "none"
	RecordModeAlways RecordMode = "always"
	RecordModeMotion RecordMode = "motion"
)

// RecordMode derives the externally visible mode from the camera's
// recording settings. Motion takes precedence over full-time when both
// are enabled.
func (c Camera) RecordMode() RecordMode {
	switch {
	case c.RecordingSettings.MotionRecordEnabled:
		return RecordModeMotion
	case c.RecordingSettings.FullTimeRecordEnabled:
		return RecordModeAlways
	default:
		return RecordModeNone
	}
}

// ParseRecordMode maps an inbound command payload to a record mode.
// The command vocabulary is a closed set: anything outside
// {"always", "motion"} collapses to "none". Defaulting to none is
// deliberate policy, not an error.
func ParseRecordMode(payload string) RecordMode {
	switch payload {
	case string(RecordModeAlways):
		return RecordModeAlways
	case string(RecordModeMotion):
		return RecordModeMotion
	default:
		return RecordModeNone
	}
}

// MotionState is a camera's published motion state.
type MotionState string

// Motion state payloads. "open" means a motion recording is currently
// in progress for the camera.
const (
	MotionOpen   MotionState = "open"
	MotionClosed MotionState = "close"
)

// RecordingEventMotion is the NVR event type for motion-triggered
// recordings, the only cause the bridge queries for.
const RecordingEventMotion = "motionRecording"

// Recording is one NVR recording entry. Recordings are transient:
// fetched per motion tick and never stored beyond the tick that
// produced them.
type Recording struct {
	ID         string
	CameraID   string
	EventType  string
	InProgress bool
	Start      time.Time
	End        time.Time
}
