package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zerorone/xtool-memory/model"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}
	return fs
}

func sampleItem(id string, layer model.Layer) *model.Item {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Item{
		ID:           id,
		Content:      "the build uses make lint before commit",
		Layer:        layer,
		Type:         "convention",
		Category:     "build",
		Tags:         []string{"ci", "lint"},
		Importance:   model.ImportanceHigh,
		CreatedAt:    now,
		UpdatedAt:    now,
		QualityScore: 1.0,
		DecayFactor:  0.95,
		AutoCleanup:  true,
		RelatedItems: []string{"01OTHER"},
	}
}

func TestFileStorePutLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	want := sampleItem("01AAA", model.LayerSession)
	if err := fs.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	items, skipped, err := fs.Load(ctx, model.LayerSession)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.ID != want.ID || got.Content != want.Content || got.Importance != want.Importance {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "ci" {
		t.Errorf("tags not preserved: %v", got.Tags)
	}
	if !got.AutoCleanup {
		t.Error("auto_cleanup not preserved")
	}

	// Other layers stay empty.
	items, _, err = fs.Load(ctx, model.LayerGlobal)
	if err != nil {
		t.Fatalf("load global: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty global layer, got %d items", len(items))
	}
}

func TestFileStoreSkipsCorruptRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.Put(ctx, sampleItem("01GOOD", model.LayerProject)); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Plant a record that is not valid JSON and one with no id.
	bad := filepath.Join(dir, "project", "01BAD.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "project", "01EMPTY.json")
	if err := os.WriteFile(empty, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	items, skipped, err := fs.Load(ctx, model.LayerProject)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 1 || items[0].ID != "01GOOD" {
		t.Fatalf("expected only the good record, got %d items", len(items))
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	it := sampleItem("01DEL", model.LayerSession)
	if err := fs.Put(ctx, it); err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(ctx, model.LayerSession, "01DEL"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again is not an error.
	if err := fs.Delete(ctx, model.LayerSession, "01DEL"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	items, _, err := fs.Load(ctx, model.LayerSession)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty layer after delete, got %d", len(items))
	}
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)

	it := sampleItem("../escape", model.LayerSession)
	if err := fs.Put(ctx, it); err == nil {
		t.Error("expected error for id with path separator")
	}
	if _, _, err := fs.Load(ctx, model.Layer("nope")); err == nil {
		t.Error("expected error for unknown layer")
	}
}
