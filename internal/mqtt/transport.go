// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

// Package mqtt wraps the Eclipse Paho client behind the small surface
// the bridge needs: retained publish, wildcard subscribe and shutdown.
//
// Connection maintenance (reconnect, keepalive, session) is Paho's
// responsibility; subscriptions are re-established on reconnect via the
// OnConnect hook. Delivery guarantees are whatever QoS 1 provides:
// at-least-once, no dedup.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/tomtom215/unifi-video-mqtt/internal/config"
	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
)

// publishTimeout bounds how long a Publish waits for broker ack.
const publishTimeout = 10 * time.Second

// MessageHandler receives inbound messages for a subscribed filter.
// Handlers run on Paho's router goroutine and must not block.
type MessageHandler func(topic string, payload []byte)

// Client is the bridge's MQTT transport.
type Client struct {
	inner paho.Client

	// mu guards subscriptions, which are replayed on reconnect.
	mu            sync.Mutex
	subscriptions map[string]MessageHandler
}

// Connect establishes the broker session. The configured client id gets
// a random suffix so a restarting instance cannot race its own dying
// session for the broker-side client slot.
func Connect(cfg *config.MQTTConfig) (*Client, error) {
	client := &Client{
		subscriptions: make(map[string]MessageHandler),
	}

	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, strings.Split(uuid.NewString(), "-")[0])

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(30 * time.Second).
		SetOrderMatters(false).
		SetOnConnectHandler(client.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logging.Warn().Err(err).Msg("[mqtt] Connection lost, reconnecting")
		})

	client.inner = paho.NewClient(opts)

	token := client.inner.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", err)
	}

	logging.Info().Str("broker", cfg.BrokerURL).Str("client_id", clientID).Msg("[mqtt] Connected")
	return client, nil
}

// Publish sends a message at QoS 1. Retained messages make the broker
// replay the last value to new subscribers, which is what lets the
// bridge publish only deltas.
func (c *Client) Publish(topic string, payload []byte, retain bool) error {
	token := c.inner.Publish(topic, 1, retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s failed: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler for a topic filter at QoS 1. The
// subscription survives reconnects.
func (c *Client) Subscribe(filter string, handler MessageHandler) error {
	c.mu.Lock()
	c.subscriptions[filter] = handler
	c.mu.Unlock()

	return c.subscribe(filter, handler)
}

// subscribe performs the broker-side subscription.
func (c *Client) subscribe(filter string, handler MessageHandler) error {
	token := c.inner.Subscribe(filter, 1, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt subscribe to %s timed out", filter)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe to %s failed: %w", filter, err)
	}
	return nil
}

// onConnect replays subscriptions after a (re)connect. Paho with clean
// sessions drops server-side subscription state on reconnect.
func (c *Client) onConnect(_ paho.Client) {
	c.mu.Lock()
	subs := make(map[string]MessageHandler, len(c.subscriptions))
	for filter, handler := range c.subscriptions {
		subs[filter] = handler
	}
	c.mu.Unlock()

	for filter, handler := range subs {
		if err := c.subscribe(filter, handler); err != nil {
			logging.Error().Err(err).Str("filter", filter).Msg("[mqtt] Failed to restore subscription")
		}
	}
}

// IsConnected reports whether the broker session is currently up.
func (c *Client) IsConnected() bool {
	return c.inner.IsConnectionOpen()
}

// Close disconnects from the broker, allowing in-flight messages a
// short grace period to complete.
func (c *Client) Close() {
	c.inner.Disconnect(250)
	logging.Info().Msg("[mqtt] Disconnected")
}
