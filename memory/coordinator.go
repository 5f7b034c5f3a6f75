package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zerorone/xtool-memory/model"
	"github.com/zerorone/xtool-memory/store"
)

// Coordinator is the single entry point over the three layers. It assumes a
// host that serializes calls into it: there is no internal locking, and the
// sweeps (Promote, CleanupAll) are on-demand batch passes driven by an
// external scheduler.
type Coordinator struct {
	store   store.Store
	logger  *slog.Logger
	score   model.ScoreParams
	layers  map[model.Layer]*Layer
	entropy *rand.Rand
}

// New builds a Coordinator over the given store and loads every persisted
// record. Corrupt records are counted and logged, never fatal. A nil cfg
// means DefaultConfig().
func New(ctx context.Context, cfg *Config, st store.Store) (*Coordinator, error) {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	cfg.applyDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		store:   st,
		logger:  logger,
		score:   cfg.Score,
		layers:  make(map[model.Layer]*Layer, len(model.Layers)),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, name := range model.Layers {
		layer := newLayer(name, cfg.Policies[name], cfg.Score, st, logger)
		skipped, err := layer.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("memory: load layer %s: %w", name, err)
		}
		if skipped > 0 {
			logger.Warn("memory: dropped corrupt records at load",
				"layer", name, "count", skipped)
		}
		c.layers[name] = layer
	}
	return c, nil
}

func (c *Coordinator) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}

// SaveParams holds the inputs for storing one memory item.
type SaveParams struct {
	Content  string
	Layer    model.Layer // default: session (callers opt into durability)
	Type     string
	Category string
	Tags     []string
	// Importance defaults to medium.
	Importance model.Importance
	// QualityScore is a caller-supplied prior; 0 means the default 1.0.
	QualityScore float64
	// RelevanceScore is an ephemeral ranking hint.
	RelevanceScore float64
	RelatedItems   []string
	// DecayFactor overrides the configured default when > 0.
	DecayFactor float64
	// MinRetentionDays shields the item from cleanup regardless of score.
	MinRetentionDays int
	// AutoCleanup defaults to true; nil means true.
	AutoCleanup *bool
}

// Save stores new content and returns the assigned id. The default target
// is the most ephemeral layer; unknown layer or importance names fail fast.
func (c *Coordinator) Save(ctx context.Context, p SaveParams) (string, error) {
	layerName := p.Layer
	if layerName == "" {
		layerName = model.LayerSession
	}
	if _, err := model.ParseLayer(string(layerName)); err != nil {
		return "", err
	}

	importance := p.Importance
	if importance == "" {
		importance = model.ImportanceMedium
	}
	if _, err := model.ParseImportance(string(importance)); err != nil {
		return "", err
	}

	quality := p.QualityScore
	if quality == 0 {
		quality = 1.0
	}
	decayFactor := p.DecayFactor
	if decayFactor <= 0 {
		decayFactor = c.score.DefaultDecayFactor
	}
	autoCleanup := true
	if p.AutoCleanup != nil {
		autoCleanup = *p.AutoCleanup
	}

	now := time.Now()
	it := &model.Item{
		ID:               c.newID(),
		Content:          p.Content,
		Type:             p.Type,
		Category:         p.Category,
		Tags:             append([]string(nil), p.Tags...),
		Importance:       importance,
		CreatedAt:        now,
		UpdatedAt:        now,
		QualityScore:     quality,
		RelevanceScore:   p.RelevanceScore,
		RelatedItems:     append([]string(nil), p.RelatedItems...),
		DecayFactor:      decayFactor,
		MinRetentionDays: p.MinRetentionDays,
		AutoCleanup:      autoCleanup,
	}

	c.layers[layerName].save(ctx, it, now)
	return it.ID, nil
}

// Get returns a clone of the item, or nil on miss. When layer is empty the
// tiers are probed most-durable first: global, project, session. Every hit
// bumps the item's access bookkeeping and re-persists it.
func (c *Coordinator) Get(ctx context.Context, id string, layer model.Layer) (*model.Item, error) {
	now := time.Now()
	if layer != "" {
		if _, err := model.ParseLayer(string(layer)); err != nil {
			return nil, err
		}
		return c.layers[layer].get(ctx, id, now), nil
	}
	for _, name := range model.Layers {
		if it := c.layers[name].get(ctx, id, now); it != nil {
			return it, nil
		}
	}
	return nil, nil
}

// Remove deletes an item explicitly. When layer is empty the tiers are
// probed in the same order as Get. Reports whether anything was removed;
// a miss is not an error.
func (c *Coordinator) Remove(ctx context.Context, id string, layer model.Layer) (bool, error) {
	if layer != "" {
		if _, err := model.ParseLayer(string(layer)); err != nil {
			return false, err
		}
		return c.layers[layer].remove(ctx, id), nil
	}
	for _, name := range model.Layers {
		if c.layers[name].remove(ctx, id) {
			return true, nil
		}
	}
	return false, nil
}

// Related resolves an item's related_items across all layers. The
// references are weak: dangling ids are silently skipped, and the lookups
// do not count as accesses.
func (c *Coordinator) Related(ctx context.Context, id string, layer model.Layer) ([]*model.Item, error) {
	src := c.peek(id, layer)
	if src == nil {
		return nil, nil
	}
	var out []*model.Item
	for _, rid := range src.RelatedItems {
		if it := c.peek(rid, ""); it != nil {
			out = append(out, it.Clone())
		}
	}
	return out, nil
}

// peek finds an item without access bookkeeping.
func (c *Coordinator) peek(id string, layer model.Layer) *model.Item {
	if layer != "" {
		if l, ok := c.layers[layer]; ok {
			return l.items[id]
		}
		return nil
	}
	for _, name := range model.Layers {
		if it, ok := c.layers[name].items[id]; ok {
			return it
		}
	}
	return nil
}

// PromotionResult counts migrations per tier transition.
type PromotionResult struct {
	SessionToProject int `json:"session_to_project"`
	ProjectToGlobal  int `json:"project_to_global"`
}

// Promote migrates qualifying items one tier up: session to project, then
// project to global. Each pass snapshots the source id set first so the
// collection is never mutated while being iterated. A qualifying item is
// cloned into the target under a new id and removed from the source;
// identity is not preserved across layers. Calling again with nothing newly
// eligible is a no-op.
func (c *Coordinator) Promote(ctx context.Context) PromotionResult {
	var res PromotionResult
	res.SessionToProject = c.promoteLayer(ctx, model.LayerSession)
	res.ProjectToGlobal = c.promoteLayer(ctx, model.LayerProject)
	return res
}

func (c *Coordinator) promoteLayer(ctx context.Context, from model.Layer) int {
	src := c.layers[from]
	dst := c.layers[nextLayer[from]]
	now := time.Now()

	promoted := 0
	for _, id := range src.snapshotIDs() {
		it, ok := src.items[id]
		if !ok {
			continue
		}
		if !src.shouldPromote(it, now) {
			continue
		}

		clone := it.Clone()
		clone.ID = c.newID()
		dst.save(ctx, clone, now)
		src.remove(ctx, id)
		promoted++

		c.logger.Debug("memory: promoted item",
			"from", from, "to", dst.name, "old_id", id, "new_id", clone.ID)
	}
	return promoted
}

// CleanupAll runs the expiry sweep on every layer and returns per-layer
// eviction counts.
func (c *Coordinator) CleanupAll(ctx context.Context) map[model.Layer]int {
	now := time.Now()
	counts := make(map[model.Layer]int, len(model.Layers))
	for _, name := range model.Layers {
		counts[name] = c.layers[name].cleanup(ctx, now)
	}
	return counts
}

// Close releases the underlying store.
func (c *Coordinator) Close() error {
	return c.store.Close()
}
