// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

/*
Package services provides suture.Service wrappers for components whose
native lifecycle does not match suture's context-aware Serve pattern.

HTTPServerService adapts net/http's blocking ListenAndServe plus
Shutdown pair into a single supervised Serve(ctx) call, so the ops
endpoint can live under the supervisor tree alongside the pollers.

Each wrapper implements:

	Serve(ctx context.Context) error

and fmt.Stringer so suture can name the service in its events.
*/
package services
