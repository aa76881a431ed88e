// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

/*
Package supervisor provides process supervision for the bridge using suture v4.

This package implements a small supervisor tree that manages the lifecycle
of the bridge's long-running services. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("unifi-video-mqtt")
	├── PollerSupervisor ("poller-layer")
	│   ├── AttributePoller
	│   └── MotionPoller
	└── OpsSupervisor ("ops-layer")
	    └── HTTPServerService (health + metrics)

This hierarchy ensures that:
  - A crashing poller is restarted without touching the ops endpoint
  - An ops server failure never interrupts NVR polling
  - Each layer has independent failure counting and backoff

# Usage Example

Basic setup in main.go:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPollerService(attributePoller)
	tree.AddPollerService(motionPoller)
	tree.AddOpsService(opsService)

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services must implement suture.Service:

	Serve(ctx context.Context) error

A service runs until its context is canceled or it returns an error. On
error the supervisor restarts it with exponential backoff; on context
cancellation the whole tree shuts down in reverse order.
*/
package supervisor
