// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"sort"
	"sync"

	"github.com/tomtom215/unifi-video-mqtt/internal/logging"
	"github.com/tomtom215/unifi-video-mqtt/internal/models"
)

// Store is the authoritative in-process snapshot of last-known camera
// attributes and last-published topic state, keyed by camera id.
//
// It is the single piece of state shared between the attribute poller,
// the motion poller and the command dispatcher, each of which runs on
// its own goroutine; every operation is internally atomic with respect
// to the others.
//
// Last-published entries exist only for ids that have actually been
// published; absence means "never announced", not "closed"/"none".
// That distinction is what makes the first observation of any camera
// publish regardless of its computed value.
type Store struct {
	mu     sync.RWMutex
	closed bool

	cameras  map[string]models.Camera
	slugToID map[string]string
	idToSlug map[string]string

	lastMotion map[string]models.MotionState
	lastMode   map[string]models.RecordMode
}

// NewStore creates an empty store. It is populated by the initial sync
// before any poller starts.
func NewStore() *Store {
	return &Store{
		cameras:    make(map[string]models.Camera),
		slugToID:   make(map[string]string),
		idToSlug:   make(map[string]string),
		lastMotion: make(map[string]models.MotionState),
		lastMode:   make(map[string]models.RecordMode),
	}
}

// ReplaceCameras atomically swaps in a fresh camera snapshot and
// returns the sorted ids whose record mode must be (re-)published:
//
//   - ids never announced on the record-mode topic
//   - ids whose recording settings differ from the previous snapshot
//     (display-name-only changes update the slug mapping but do not
//     count as changed)
//   - ids whose derived mode differs from the last published mode,
//     which retries publishes that failed on an earlier tick
//
// The slug mapping is rebuilt from the new snapshot. On a slug
// collision the camera with the smallest id wins; the others are
// logged and excluded from the mapping for this snapshot, so their
// topics are never cross-published.
//
// Cameras absent from the new snapshot are dropped from the attribute
// and slug maps but keep their last-published entries; they are not
// retracted from the topic bus.
func (s *Store) ReplaceCameras(snapshot map[string]models.Camera) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var changed []string
	for _, id := range ids {
		cam := snapshot[id]

		lastMode, published := s.lastMode[id]
		prev, existed := s.cameras[id]

		switch {
		case !published:
			changed = append(changed, id)
		case existed && prev.RecordingSettings != cam.RecordingSettings:
			changed = append(changed, id)
		case lastMode != cam.RecordMode():
			changed = append(changed, id)
		}
	}

	cameras := make(map[string]models.Camera, len(snapshot))
	slugToID := make(map[string]string, len(snapshot))
	idToSlug := make(map[string]string, len(snapshot))

	for _, id := range ids {
		cam := snapshot[id]
		cameras[id] = cam

		slug := Slugify(cam.Name)
		if slug == "" {
			logging.Warn().Str("camera_id", id).Str("name", cam.Name).
				Msg("Camera name slugifies to empty, excluding from topic mapping")
			continue
		}
		if winner, taken := slugToID[slug]; taken {
			logging.Warn().Str("slug", slug).Str("camera_id", id).Str("conflicts_with", winner).
				Msg("Slug collision, excluding camera from topic mapping")
			continue
		}
		slugToID[slug] = id
		idToSlug[id] = slug
	}

	s.cameras = cameras
	s.slugToID = slugToID
	s.idToSlug = idToSlug

	return changed
}

// ResolveSlugToID resolves a topic slug to a camera id using the most
// recently completed attribute snapshot.
func (s *Store) ResolveSlugToID(slug string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false
	}
	id, ok := s.slugToID[slug]
	return id, ok
}

// Slug returns the current topic slug for a camera id. ok is false for
// unknown ids and for cameras excluded by a slug collision.
func (s *Store) Slug(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false
	}
	slug, ok := s.idToSlug[id]
	return slug, ok
}

// KnownCameraIDs returns the sorted ids in the current snapshot.
func (s *Store) KnownCameraIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}

	ids := make([]string, 0, len(s.cameras))
	for id := range s.cameras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LastMotionState returns the last published motion state for a
// camera. ok is false if the camera has never been announced.
func (s *Store) LastMotionState(id string) (models.MotionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false
	}
	state, ok := s.lastMotion[id]
	return state, ok
}

// RecordMotionState records a published motion state and returns the
// prior value, with existed=false if this was the first publish.
// Callers invoke this only after a successful publish; the store is a
// write-through cache of what was told to the topic bus.
func (s *Store) RecordMotionState(id string, state models.MotionState) (prev models.MotionState, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false
	}
	prev, existed = s.lastMotion[id]
	s.lastMotion[id] = state
	return prev, existed
}

// RecordPublishedMode records a published record mode and returns the
// prior value, with existed=false if this was the first publish.
func (s *Store) RecordPublishedMode(id string, mode models.RecordMode) (prev models.RecordMode, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false
	}
	prev, existed = s.lastMode[id]
	s.lastMode[id] = mode
	return prev, existed
}

// Close marks the store as torn down. Subsequent mutations become
// no-ops and lookups report not-found, so in-flight ticks or inbound
// messages completing after shutdown cannot resurrect state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
