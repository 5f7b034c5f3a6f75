package memory

import (
	"context"
	"sort"
	"time"

	"github.com/zerorone/xtool-memory/model"
)

// SearchParams holds parameters for searching memory items.
type SearchParams struct {
	// Query substring-matches against content (case-insensitive). Empty
	// matches everything.
	Query string
	// Layers restricts the fan-out; empty means all three.
	Layers []model.Layer
	// Filter dimensions combine with AND semantics.
	Type       string
	Tags       []string
	Category   string
	Importance model.Importance
	// MinQuality drops items whose live decay score falls below it.
	MinQuality float64
	// Limit truncates the ranked result; 0 means 20.
	Limit int
}

const defaultSearchLimit = 20

// Search fans out to each requested layer, merges the survivors, re-ranks
// globally by (relevance_score desc, decay score desc, last_accessed desc)
// and truncates to the limit. With no intervening mutation the same call
// returns the same ordered output.
func (c *Coordinator) Search(ctx context.Context, p SearchParams) ([]*model.Item, error) {
	layers := p.Layers
	if len(layers) == 0 {
		layers = model.Layers
	}
	for _, name := range layers {
		if _, err := model.ParseLayer(string(name)); err != nil {
			return nil, err
		}
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	filters := Filters{
		Type:       p.Type,
		Tags:       p.Tags,
		Category:   p.Category,
		Importance: p.Importance,
	}

	now := time.Now()
	var merged []scoredItem
	for _, name := range layers {
		merged = append(merged, c.layers[name].search(filters, p.Query, p.MinQuality, now)...)
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.item.RelevanceScore != b.item.RelevanceScore {
			return a.item.RelevanceScore > b.item.RelevanceScore
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.item.LastAccessed.Equal(b.item.LastAccessed) {
			return a.item.LastAccessed.After(b.item.LastAccessed)
		}
		// Final id tiebreak keeps repeated searches deterministic.
		return a.item.ID < b.item.ID
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	out := make([]*model.Item, len(merged))
	for i, sc := range merged {
		out[i] = sc.item
	}
	return out, nil
}
