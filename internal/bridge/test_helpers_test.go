// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/unifi-video-mqtt/internal/models"
)

// testTopics is the namespace used throughout the bridge tests.
var testTopics = NewTopics("home")

// camera builds a test camera with the given settings.
func camera(id, name string, fullTime, motion bool) models.Camera {
	return models.Camera{
		ID:   id,
		Name: name,
		RecordingSettings: models.RecordingSettings{
			FullTimeRecordEnabled: fullTime,
			MotionRecordEnabled:   motion,
		},
	}
}

// snapshotOf keys cameras by id, as ReplaceCameras expects.
func snapshotOf(cameras ...models.Camera) map[string]models.Camera {
	snapshot := make(map[string]models.Camera, len(cameras))
	for _, cam := range cameras {
		snapshot[cam.ID] = cam
	}
	return snapshot
}

// setModeCall records one SetRecordMode invocation on the fake NVR.
type setModeCall struct {
	cameraID string
	mode     models.RecordMode
}

// fakeNVR implements nvr.API with canned data and call recording.
// Safe for concurrent use, like the real client.
//
// fetchStarted and fetchRelease, when set before use, gate both list
// calls: each call signals fetchStarted and then blocks until
// fetchRelease is closed. Overlap tests use this to hold a fetch open.
type fakeNVR struct {
	mu sync.Mutex

	cameras    []models.Camera
	camerasErr error

	recordings    []models.Recording
	recordingsErr error

	setModeErr   error
	setModeCalls []setModeCall

	listCamerasCalls    int
	listRecordingsCalls int

	fetchStarted chan struct{}
	fetchRelease chan struct{}
}

func (f *fakeNVR) ListCameras(_ context.Context) ([]models.Camera, error) {
	f.mu.Lock()
	f.listCamerasCalls++
	err := f.camerasErr
	out := make([]models.Camera, len(f.cameras))
	copy(out, f.cameras)
	f.mu.Unlock()

	f.gate()

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeNVR) ListRecordings(_ context.Context, _, _ time.Time, _ []string, _ []string) ([]models.Recording, error) {
	f.mu.Lock()
	f.listRecordingsCalls++
	err := f.recordingsErr
	out := make([]models.Recording, len(f.recordings))
	copy(out, f.recordings)
	f.mu.Unlock()

	f.gate()

	if err != nil {
		return nil, err
	}
	return out, nil
}

// gate blocks a list call until fetchRelease is closed, signalling
// fetchStarted first. A nil fetchRelease means no gating.
func (f *fakeNVR) gate() {
	if f.fetchRelease == nil {
		return
	}
	select {
	case f.fetchStarted <- struct{}{}:
	default:
	}
	<-f.fetchRelease
}

func (f *fakeNVR) SetRecordMode(_ context.Context, cameraID string, mode models.RecordMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setModeErr != nil {
		return f.setModeErr
	}
	f.setModeCalls = append(f.setModeCalls, setModeCall{cameraID: cameraID, mode: mode})
	return nil
}

// setCameras replaces the canned camera list.
func (f *fakeNVR) setCameras(cameras ...models.Camera) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cameras = cameras
	f.camerasErr = nil
}

// setRecordings replaces the canned recordings list.
func (f *fakeNVR) setRecordings(recordings ...models.Recording) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordings = recordings
	f.recordingsErr = nil
}

// camerasCallCount returns how many times ListCameras was invoked.
func (f *fakeNVR) camerasCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCamerasCalls
}

// recordingsCallCount returns how many times ListRecordings was invoked.
func (f *fakeNVR) recordingsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listRecordingsCalls
}

// modeCalls returns a copy of the recorded SetRecordMode calls.
func (f *fakeNVR) modeCalls() []setModeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]setModeCall, len(f.setModeCalls))
	copy(out, f.setModeCalls)
	return out
}

// published records one Publish invocation on the fake transport.
type published struct {
	topic   string
	payload string
	retain  bool
}

// fakePublisher implements Publisher with call recording and an
// optional injected error.
type fakePublisher struct {
	mu       sync.Mutex
	err      error
	messages []published
}

func (f *fakePublisher) Publish(topic string, payload []byte, retain bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{topic: topic, payload: string(payload), retain: retain})
	return nil
}

// setError injects or clears a publish failure.
func (f *fakePublisher) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// all returns a copy of the recorded messages.
func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]published, len(f.messages))
	copy(out, f.messages)
	return out
}

// onTopic returns the recorded messages for one topic, in order.
func (f *fakePublisher) onTopic(topic string) []published {
	var out []published
	for _, msg := range f.all() {
		if msg.topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
