// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import "testing"

func TestTopicConstruction(t *testing.T) {
	t.Parallel()

	topics := NewTopics("home")

	if got := topics.Motion("front-door"); got != "unifi/video/home/camera/front-door/motion" {
		t.Errorf("Motion = %q", got)
	}
	if got := topics.RecordMode("front-door"); got != "unifi/video/home/camera/front-door/recordMode" {
		t.Errorf("RecordMode = %q", got)
	}
	if got := topics.CommandFilter(); got != "unifi/video/home/camera/+/+/set" {
		t.Errorf("CommandFilter = %q", got)
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	topics := NewTopics("home")

	tests := []struct {
		name        string
		topic       string
		wantSlug    string
		wantSub     string
		wantMatched bool
	}{
		{
			"record mode command",
			"unifi/video/home/camera/front-door/recordMode/set",
			"front-door", "recordMode", true,
		},
		{
			"other subtopic still parses",
			"unifi/video/home/camera/garage/brightness/set",
			"garage", "brightness", true,
		},
		{"wrong root", "unifi/video/other/camera/front-door/recordMode/set", "", "", false},
		{"missing set suffix", "unifi/video/home/camera/front-door/recordMode", "", "", false},
		{"state topic not a command", "unifi/video/home/camera/front-door/motion", "", "", false},
		{"empty slug", "unifi/video/home/camera//recordMode/set", "", "", false},
		{"empty subtopic", "unifi/video/home/camera/front-door//set", "", "", false},
		{"extra segments", "unifi/video/home/camera/a/b/c/set", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			slug, sub, ok := topics.ParseCommand(tt.topic)
			if ok != tt.wantMatched {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.topic, ok, tt.wantMatched)
			}
			if slug != tt.wantSlug || sub != tt.wantSub {
				t.Errorf("ParseCommand(%q) = (%q, %q), want (%q, %q)", tt.topic, slug, sub, tt.wantSlug, tt.wantSub)
			}
		})
	}
}
