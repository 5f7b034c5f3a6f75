package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zerorone/xtool-memory/model"
	"github.com/zerorone/xtool-memory/store"
)

// Layer is one storage tier: an authoritative in-memory item set, its
// secondary index, a retention policy, and a persistence backend. The three
// instances differ only by name and policy.
type Layer struct {
	name   model.Layer
	policy RetentionPolicy
	score  model.ScoreParams
	items  map[string]*model.Item
	index  *Index
	store  store.Store
	logger *slog.Logger
}

func newLayer(name model.Layer, policy RetentionPolicy, score model.ScoreParams, st store.Store, logger *slog.Logger) *Layer {
	return &Layer{
		name:   name,
		policy: policy,
		score:  score,
		items:  make(map[string]*model.Item),
		index:  NewIndex(),
		store:  st,
		logger: logger,
	}
}

// load pulls every persisted record into memory, skipping corrupt ones.
// Returns the number of records dropped; a load error aborts construction,
// corrupt records never do.
func (l *Layer) load(ctx context.Context) (int, error) {
	items, skipped, err := l.store.Load(ctx, l.name)
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		it.Layer = l.name
		l.items[it.ID] = it
		l.index.Add(it)
	}
	return skipped, nil
}

// save stamps ownership, refreshes updated_at, indexes, and persists. A
// persist failure is logged and swallowed: the in-memory copy stays
// authoritative for the life of the process.
func (l *Layer) save(ctx context.Context, it *model.Item, now time.Time) {
	it.Layer = l.name
	it.UpdatedAt = now
	l.items[it.ID] = it
	l.index.Add(it)
	l.persist(ctx, it)
}

func (l *Layer) persist(ctx context.Context, it *model.Item) {
	if err := l.store.Put(ctx, it); err != nil {
		l.logger.Error("memory: persist failed, keeping in-memory copy",
			"layer", l.name, "id", it.ID, "err", err)
	}
}

// get returns a clone of the item after access bookkeeping, or nil on miss.
// A miss is not an error.
func (l *Layer) get(ctx context.Context, id string, now time.Time) *model.Item {
	it, ok := l.items[id]
	if !ok {
		return nil
	}
	it.Touch(now)
	l.persist(ctx, it)
	return it.Clone()
}

// remove deletes the item from memory, index and store. Reports whether the
// id was held.
func (l *Layer) remove(ctx context.Context, id string) bool {
	it, ok := l.items[id]
	if !ok {
		return false
	}
	l.index.Remove(it)
	delete(l.items, id)
	if err := l.store.Delete(ctx, l.name, id); err != nil {
		l.logger.Error("memory: delete from store failed",
			"layer", l.name, "id", id, "err", err)
	}
	return true
}

// cleanup evicts items whose live score has fallen below the policy floor,
// provided the item has outlived both the layer's max age and its own
// min_retention_days, and has auto-cleanup enabled. Per-item store failures
// are logged and skipped so one bad record cannot abort the sweep.
func (l *Layer) cleanup(ctx context.Context, now time.Time) int {
	// Snapshot ids so eviction does not mutate the map mid-range.
	ids := l.snapshotIDs()

	removed := 0
	for _, id := range ids {
		it, ok := l.items[id]
		if !ok {
			continue
		}
		if !it.AutoCleanup {
			continue
		}
		age := it.AgeDays(now)
		if age <= l.policy.MaxAgeDays || age <= float64(it.MinRetentionDays) {
			continue
		}
		if model.Score(it, now, l.score) >= l.policy.Floor {
			continue
		}
		l.index.Remove(it)
		delete(l.items, id)
		if err := l.store.Delete(ctx, l.name, id); err != nil {
			l.logger.Error("memory: cleanup delete failed",
				"layer", l.name, "id", id, "err", err)
			continue
		}
		removed++
	}
	return removed
}

// shouldPromote evaluates the layer's promotion rule against the item's
// live score. Terminal layers never promote.
func (l *Layer) shouldPromote(it *model.Item, now time.Time) bool {
	if l.policy.Promotion == nil {
		return false
	}
	return l.policy.Promotion.Qualifies(it, model.Score(it, now, l.score))
}

// scoredItem pairs an item with its score computed once per search pass.
type scoredItem struct {
	item  *model.Item
	score float64
}

// search narrows candidates through the index, substring-matches the query
// against content, drops items below minQuality, and returns unsorted
// scored survivors. Ranking happens at the coordinator so fan-out results
// merge under one order.
func (l *Layer) search(f Filters, query string, minQuality float64, now time.Time) []scoredItem {
	candidates := l.index.Candidates(f)

	consider := func(it *model.Item) (scoredItem, bool) {
		if query != "" && !strings.Contains(strings.ToLower(it.Content), strings.ToLower(query)) {
			return scoredItem{}, false
		}
		s := model.Score(it, now, l.score)
		if s < minQuality {
			return scoredItem{}, false
		}
		return scoredItem{item: it.Clone(), score: s}, true
	}

	var out []scoredItem
	if candidates == nil {
		for _, it := range l.items {
			if sc, ok := consider(it); ok {
				out = append(out, sc)
			}
		}
		return out
	}
	for id := range candidates {
		it, ok := l.items[id]
		if !ok {
			continue
		}
		if sc, ok := consider(it); ok {
			out = append(out, sc)
		}
	}
	return out
}

// snapshotIDs copies the current id set so sweeps can iterate while the
// underlying collection mutates.
func (l *Layer) snapshotIDs() []string {
	ids := make([]string, 0, len(l.items))
	for id := range l.items {
		ids = append(ids, id)
	}
	return ids
}

// count returns the number of items currently held.
func (l *Layer) count() int {
	return len(l.items)
}
