package memory

import (
	"context"
	"testing"
	"time"

	"github.com/zerorone/xtool-memory/model"
)

func TestPromotionRuleQualifies(t *testing.T) {
	rule := PromotionRule{
		MinScore:       1.0,
		MinAccessCount: 5,
		MinImportance:  model.ImportanceMedium,
	}

	base := &model.Item{AccessCount: 5, Importance: model.ImportanceMedium}

	cases := []struct {
		name   string
		mutate func(*model.Item)
		score  float64
		want   bool
	}{
		{"meets all", func(it *model.Item) {}, 1.0, true},
		{"score too low", func(it *model.Item) {}, 0.99, false},
		{"too few accesses", func(it *model.Item) { it.AccessCount = 4 }, 2.0, false},
		{"importance too low", func(it *model.Item) { it.Importance = model.ImportanceLow }, 2.0, false},
		{"higher importance ok", func(it *model.Item) { it.Importance = model.ImportanceCritical }, 1.0, true},
	}
	for _, tc := range cases {
		it := base.Clone()
		tc.mutate(it)
		if got := rule.Qualifies(it, tc.score); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	tagged := PromotionRule{MinTags: 3}
	if tagged.Qualifies(&model.Item{Tags: []string{"a", "b"}}, 2.0) {
		t.Error("two tags should not satisfy MinTags 3")
	}
	if !tagged.Qualifies(&model.Item{Tags: []string{"a", "b", "c"}}, 2.0) {
		t.Error("three tags should satisfy MinTags 3")
	}
}

func TestTerminalLayerNeverPromotes(t *testing.T) {
	c := newTestCoordinator(t)

	it := &model.Item{
		ID:           "01HOT",
		Importance:   model.ImportanceCritical,
		AccessCount:  100,
		CreatedAt:    time.Now(),
		QualityScore: 1.0,
		Tags:         []string{"a", "b", "c", "d"},
	}
	if c.layers[model.LayerGlobal].shouldPromote(it, time.Now()) {
		t.Error("global layer has no next tier")
	}
}

func TestLayerSearchQueryIsCaseInsensitive(t *testing.T) {
	c := newTestCoordinator(t)
	l := c.layers[model.LayerSession]

	now := time.Now()
	l.save(context.Background(), &model.Item{
		ID:           "01Q",
		Content:      "Postgres connection pooling",
		Importance:   model.ImportanceMedium,
		CreatedAt:    now,
		QualityScore: 1.0,
	}, now)

	if got := l.search(Filters{}, "POSTGRES", 0, now); len(got) != 1 {
		t.Errorf("case-insensitive match failed: %d results", len(got))
	}
	if got := l.search(Filters{}, "mysql", 0, now); len(got) != 0 {
		t.Errorf("expected no match, got %d", len(got))
	}
}
