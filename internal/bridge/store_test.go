// UniFi Video MQTT Bridge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unifi-video-mqtt

package bridge

import (
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/unifi-video-mqtt/internal/models"
)

func TestReplaceCamerasFirstObservation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	changed := store.ReplaceCameras(snapshotOf(
		camera("cam1", "Front Door", false, false),
		camera("cam2", "Garage", true, false),
	))

	// Never-announced cameras are always in the changed set, even when
	// the computed mode is "none".
	if len(changed) != 2 {
		t.Fatalf("changed = %v, want both ids", changed)
	}
}

func TestReplaceCamerasNoChangeAfterPublish(t *testing.T) {
	t.Parallel()

	store := NewStore()
	snapshot := snapshotOf(camera("cam1", "Front Door", false, true))

	store.ReplaceCameras(snapshot)
	store.RecordPublishedMode("cam1", models.RecordModeMotion)

	for i := 0; i < 3; i++ {
		if changed := store.ReplaceCameras(snapshot); len(changed) != 0 {
			t.Fatalf("tick %d: changed = %v, want none", i, changed)
		}
	}
}

func TestReplaceCamerasSettingsChange(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceCameras(snapshotOf(camera("cam1", "Front Door", false, true)))
	store.RecordPublishedMode("cam1", models.RecordModeMotion)

	changed := store.ReplaceCameras(snapshotOf(camera("cam1", "Front Door", true, false)))
	if len(changed) != 1 || changed[0] != "cam1" {
		t.Fatalf("changed = %v, want [cam1]", changed)
	}
}

func TestReplaceCamerasNameOnlyChange(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceCameras(snapshotOf(camera("cam1", "Front Door", false, true)))
	store.RecordPublishedMode("cam1", models.RecordModeMotion)

	// A rename does not count as changed for the record-mode contract,
	// but the slug mapping must be rebuilt.
	changed := store.ReplaceCameras(snapshotOf(camera("cam1", "Side Door", false, true)))
	if len(changed) != 0 {
		t.Errorf("changed = %v, want none for name-only change", changed)
	}

	if _, ok := store.ResolveSlugToID("front-door"); ok {
		t.Error("old slug still resolves after rename")
	}
	id, ok := store.ResolveSlugToID("side-door")
	if !ok || id != "cam1" {
		t.Errorf("new slug resolves to (%q, %v), want (cam1, true)", id, ok)
	}
}

func TestReplaceCamerasRetriesUnconfirmedPublish(t *testing.T) {
	t.Parallel()

	store := NewStore()
	snapshot := snapshotOf(camera("cam1", "Front Door", false, true))
	store.ReplaceCameras(snapshot)

	// Publish failed: the mode was never recorded. The same snapshot
	// must keep reporting the camera as changed.
	if changed := store.ReplaceCameras(snapshot); len(changed) != 1 {
		t.Fatalf("changed = %v, want [cam1] until a publish is recorded", changed)
	}
}

func TestReplaceCamerasSlugCollision(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceCameras(snapshotOf(
		camera("cam1", "Front Door", false, false),
		camera("cam2", "front-door ", false, false),
	))

	// Smallest id wins the slug; the loser is excluded, not remapped.
	id, ok := store.ResolveSlugToID("front-door")
	if !ok || id != "cam1" {
		t.Fatalf("slug resolves to (%q, %v), want (cam1, true)", id, ok)
	}
	if _, ok := store.Slug("cam2"); ok {
		t.Error("colliding camera should have no slug")
	}
	if _, ok := store.Slug("cam1"); !ok {
		t.Error("winning camera lost its slug")
	}
}

func TestReplaceCamerasRemovedCameraKeepsPublishedState(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceCameras(snapshotOf(camera("cam1", "Front Door", false, true)))
	store.RecordMotionState("cam1", models.MotionOpen)

	store.ReplaceCameras(snapshotOf())

	if ids := store.KnownCameraIDs(); len(ids) != 0 {
		t.Errorf("KnownCameraIDs = %v, want empty", ids)
	}
	// No retraction: the last-published entry survives so a returning
	// camera is not re-announced with an unchanged value.
	if state, ok := store.LastMotionState("cam1"); !ok || state != models.MotionOpen {
		t.Errorf("LastMotionState = (%q, %v), want (open, true)", state, ok)
	}
}

func TestRecordMotionStateReturnsPrior(t *testing.T) {
	t.Parallel()

	store := NewStore()

	prev, existed := store.RecordMotionState("cam1", models.MotionOpen)
	if existed {
		t.Errorf("first record reported prior state %q", prev)
	}

	prev, existed = store.RecordMotionState("cam1", models.MotionClosed)
	if !existed || prev != models.MotionOpen {
		t.Errorf("second record = (%q, %v), want (open, true)", prev, existed)
	}
}

func TestStoreClose(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceCameras(snapshotOf(camera("cam1", "Front Door", false, true)))
	store.Close()

	if changed := store.ReplaceCameras(snapshotOf(camera("cam2", "Garage", false, false))); changed != nil {
		t.Errorf("ReplaceCameras after Close = %v, want nil", changed)
	}
	if _, ok := store.ResolveSlugToID("front-door"); ok {
		t.Error("slug resolution should fail after Close")
	}
	if ids := store.KnownCameraIDs(); ids != nil {
		t.Errorf("KnownCameraIDs after Close = %v, want nil", ids)
	}
	if _, existed := store.RecordMotionState("cam1", models.MotionOpen); existed {
		t.Error("RecordMotionState after Close should be a no-op")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup

	// Attribute refreshes, motion updates and slug lookups hammering
	// the store concurrently; the race detector is the assertion.
	for g := 0; g < 4; g++ {
		wg.Add(3)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.ReplaceCameras(snapshotOf(
					camera(fmt.Sprintf("cam%d", i%5), fmt.Sprintf("Camera %d", i%5), i%2 == 0, i%3 == 0),
				))
			}
		}(g)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.RecordMotionState(fmt.Sprintf("cam%d", i%5), models.MotionOpen)
				store.LastMotionState(fmt.Sprintf("cam%d", i%5))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.ResolveSlugToID(fmt.Sprintf("camera-%d", i%5))
				store.KnownCameraIDs()
			}
		}()
	}

	wg.Wait()
}
