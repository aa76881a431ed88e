// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import "strings"

// SubtopicRecordMode is the only command subtopic the dispatcher
// recognizes.
const SubtopicRecordMode = "recordMode"

// Topics builds and parses the bridge's topic namespace, rooted at
// unifi/video/{nvrName}.
type Topics struct {
	root string
}

// NewTopics creates the topic namespace for the given NVR name.
func NewTopics(nvrName string) Topics {
	return Topics{root: "unifi/video/" + nvrName}
}

// Motion returns the retained motion state topic for a camera slug.
func (t Topics) Motion(slug string) string {
	return t.root + "/camera/" + slug + "/motion"
}

// RecordMode returns the retained record mode topic for a camera slug.
func (t Topics) RecordMode(slug string) string {
	return t.root + "/camera/" + slug + "/recordMode"
}

// CommandFilter returns the wildcard subscription covering any camera
// and any command subtopic.
func (t Topics) CommandFilter() string {
	return t.root + "/camera/+/+/set"
}

// ParseCommand extracts the camera slug and subtopic from an inbound
// command topic of the form {root}/camera/{slug}/{subtopic}/set.
// Returns ok=false for anything that does not match the shape.
func (t Topics) ParseCommand(topic string) (slug, subtopic string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.root+"/camera/")
	if !found {
		return "", "", false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "set" {
		return "", "", false
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
