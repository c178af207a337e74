package storage

import (
	"context"
	"testing"
	"time"

	"github.com/imankii01/docuflow/internal/store"
)

type fakeObjects struct {
	objects []ObjectInfo
	removed []string
}

func (f *fakeObjects) List(context.Context, string) ([]ObjectInfo, error) {
	return f.objects, nil
}

func (f *fakeObjects) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type fakeLedger struct {
	refs []store.StoredObjectRef
}

func (f *fakeLedger) ListStoredObjects(context.Context) ([]store.StoredObjectRef, error) {
	return f.refs, nil
}

func TestSweepRemovesOnlyAgedOrphans(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	fresh := time.Now().Add(-time.Minute)

	objects := &fakeObjects{objects: []ObjectInfo{
		{Key: "doc/d1/live", LastModified: old},
		{Key: "doc/d1/orphan-old", LastModified: old},
		{Key: "doc/d2/orphan-fresh", LastModified: fresh},
	}}
	ledger := &fakeLedger{refs: []store.StoredObjectRef{
		{DocumentID: "d1", StorageKey: "doc/d1/live"},
	}}

	sweeper := NewSweeper(objects, ledger)
	removed, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if len(objects.removed) != 1 || objects.removed[0] != "doc/d1/orphan-old" {
		t.Fatalf("unexpected removals: %v", objects.removed)
	}
}

func TestSweepKeepsEverythingReferenced(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	objects := &fakeObjects{objects: []ObjectInfo{
		{Key: "doc/d1/a", LastModified: old},
		{Key: "doc/d1/b", LastModified: old},
	}}
	ledger := &fakeLedger{refs: []store.StoredObjectRef{
		{DocumentID: "d1", StorageKey: "doc/d1/a"},
		{DocumentID: "d1", StorageKey: "doc/d1/b"},
	}}

	sweeper := NewSweeper(objects, ledger)
	removed, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 0 || len(objects.removed) != 0 {
		t.Fatalf("expected no removals, got %d (%v)", removed, objects.removed)
	}
}
