package memory

import (
	"context"
	"time"

	"github.com/zerorone/xtool-memory/model"
)

// LayerStats holds per-layer counts.
type LayerStats struct {
	Count int `json:"count"`
}

// Stats summarizes the subsystem: item counts per layer and an
// access-weighted average decay score across all layers.
type Stats struct {
	Layers       map[model.Layer]LayerStats `json:"layers"`
	TotalItems   int                        `json:"total_items"`
	AverageScore float64                    `json:"average_score"`
}

// Stats computes current statistics. The average weighs each item's live
// score by access_count+1, so unread items still contribute and frequently
// used ones dominate.
func (c *Coordinator) Stats(ctx context.Context) *Stats {
	now := time.Now()
	st := &Stats{Layers: make(map[model.Layer]LayerStats, len(model.Layers))}

	var weighted, weights float64
	for _, name := range model.Layers {
		layer := c.layers[name]
		st.Layers[name] = LayerStats{Count: layer.count()}
		st.TotalItems += layer.count()
		for _, it := range layer.items {
			w := float64(it.AccessCount + 1)
			weighted += model.Score(it, now, c.score) * w
			weights += w
		}
	}
	if weights > 0 {
		st.AverageScore = weighted / weights
	}
	return st
}
