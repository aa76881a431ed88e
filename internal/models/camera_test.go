// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package models

import "testing"

func TestCameraRecordModePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fullTime bool
		motion   bool
		want     RecordMode
	}{
		{"neither enabled", false, false, RecordModeNone},
		{"full-time only", true, false, RecordModeAlways},
		{"motion only", false, true, RecordModeMotion},
		{"both enabled motion wins", true, true, RecordModeMotion},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cam := Camera{
				ID:   "cam1",
				Name: "Front Door",
				RecordingSettings: RecordingSettings{
					FullTimeRecordEnabled: tt.fullTime,
					MotionRecordEnabled:   tt.motion,
				},
			}
			if got := cam.RecordMode(); got != tt.want {
				t.Errorf("RecordMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRecordMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		payload string
		want    RecordMode
	}{
		{"always", RecordModeAlways},
		{"motion", RecordModeMotion},
		{"none", RecordModeNone},
		{"", RecordModeNone},
		{"ALWAYS", RecordModeNone},
		{"garbage", RecordModeNone},
	}

	for _, tt := range tests {
		tt := tt
		if got := ParseRecordMode(tt.payload); got != tt.want {
			t.Errorf("ParseRecordMode(%q) = %q, want %q", tt.payload, got, tt.want)
		}
	}
}
