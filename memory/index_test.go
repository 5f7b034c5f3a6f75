package memory

import (
	"testing"

	"github.com/zerorone/xtool-memory/model"
)

func indexedItem(id, typ, category string, imp model.Importance, tags ...string) *model.Item {
	return &model.Item{ID: id, Type: typ, Category: category, Importance: imp, Tags: tags}
}

func TestIndexCandidatesIntersect(t *testing.T) {
	ix := NewIndex()
	ix.Add(indexedItem("a", "decision", "arch", model.ImportanceHigh, "db", "sqlite"))
	ix.Add(indexedItem("b", "decision", "arch", model.ImportanceLow, "db"))
	ix.Add(indexedItem("c", "fact", "build", model.ImportanceHigh, "ci"))

	got := ix.Candidates(Filters{Type: "decision"})
	if len(got) != 2 {
		t.Fatalf("type filter: expected 2, got %d", len(got))
	}

	got = ix.Candidates(Filters{Type: "decision", Importance: model.ImportanceHigh})
	if len(got) != 1 {
		t.Fatalf("AND filter: expected 1, got %d", len(got))
	}
	if _, ok := got["a"]; !ok {
		t.Error("expected item a")
	}

	got = ix.Candidates(Filters{Tags: []string{"db", "sqlite"}})
	if len(got) != 1 {
		t.Errorf("multi-tag filter: expected 1, got %d", len(got))
	}

	// No filter means nil (caller scans everything).
	if ix.Candidates(Filters{}) != nil {
		t.Error("empty filters should return nil")
	}

	// A filter with no matches means empty, not nil.
	got = ix.Candidates(Filters{Type: "missing"})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestIndexRemoveUsesOldValues(t *testing.T) {
	ix := NewIndex()
	it := indexedItem("a", "fact", "build", model.ImportanceMedium, "ci")
	ix.Add(it)

	// Deindex with the old values first, then mutate, then reindex.
	ix.Remove(it)
	it.Type = "decision"
	it.Tags = []string{"arch"}
	ix.Add(it)

	if len(ix.Candidates(Filters{Type: "fact"})) != 0 {
		t.Error("stale type bucket entry after reindex")
	}
	if len(ix.Candidates(Filters{Tags: []string{"ci"}})) != 0 {
		t.Error("stale tag bucket entry after reindex")
	}
	if len(ix.Candidates(Filters{Type: "decision", Tags: []string{"arch"}})) != 1 {
		t.Error("reindexed item not findable under new values")
	}
}

func TestIndexRemoveDropsEmptyBuckets(t *testing.T) {
	ix := NewIndex()
	it := indexedItem("a", "fact", "", model.ImportanceMedium, "ci")
	ix.Add(it)
	ix.Remove(it)

	if len(ix.byType) != 0 || len(ix.byTag) != 0 || len(ix.byImportance) != 0 {
		t.Errorf("buckets not pruned: %d/%d/%d", len(ix.byType), len(ix.byTag), len(ix.byImportance))
	}
}
