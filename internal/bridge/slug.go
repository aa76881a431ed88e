// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package bridge implements the state-reconciliation core: the camera
// state store, the two reconciliation pollers and the inbound command
// dispatcher. Everything here communicates through the Store's
// synchronized operations; there is no other shared mutable state.
package bridge

import "strings"

// Slugify converts a camera display name into its topic-safe address:
// lowercased, with runs of non-alphanumeric characters collapsed into
// single dashes and no leading or trailing dash.
//
//	"Front Door"   -> "front-door"
//	"front-door "  -> "front-door"
//	"Cam #2 (E)"   -> "cam-2-e"
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	return b.String()
}
