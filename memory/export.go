package memory

import (
	"context"
	"sort"

	"github.com/zerorone/xtool-memory/model"
)

// Export returns clones of every item held in the given layers (all three
// when none are named), ordered by layer then id so dumps are stable.
func (c *Coordinator) Export(ctx context.Context, layers ...model.Layer) ([]*model.Item, error) {
	if len(layers) == 0 {
		layers = model.Layers
	}
	var out []*model.Item
	for _, name := range layers {
		if _, err := model.ParseLayer(string(name)); err != nil {
			return nil, err
		}
		layer := c.layers[name]
		ids := layer.snapshotIDs()
		sort.Strings(ids)
		for _, id := range ids {
			out = append(out, layer.items[id].Clone())
		}
	}
	return out, nil
}

// Import re-saves exported items through the normal save path. Each payload
// gets a fresh id in the layer its record names; counters and timestamps
// restart. Returns how many were imported before any failure.
func (c *Coordinator) Import(ctx context.Context, items []*model.Item) (int, error) {
	imported := 0
	for _, it := range items {
		autoCleanup := it.AutoCleanup
		_, err := c.Save(ctx, SaveParams{
			Content:          it.Content,
			Layer:            it.Layer,
			Type:             it.Type,
			Category:         it.Category,
			Tags:             it.Tags,
			Importance:       it.Importance,
			QualityScore:     it.QualityScore,
			RelatedItems:     it.RelatedItems,
			DecayFactor:      it.DecayFactor,
			MinRetentionDays: it.MinRetentionDays,
			AutoCleanup:      &autoCleanup,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
