// Package store provides durable persistence backends for memory items.
//
// Both backends share the same contract: one flat record per item, addressed
// by its ID, written atomically. Load tolerates corrupt records by skipping
// them and reporting a count; a bad record never aborts startup.
package store

import (
	"context"

	"github.com/zerorone/xtool-memory/model"
)

// Store is the persistence interface a layer writes through.
type Store interface {
	// Put persists the item, replacing any existing record with the same ID.
	Put(ctx context.Context, item *model.Item) error

	// Delete removes the record for id from the given layer.
	// Deleting a missing record is not an error.
	Delete(ctx context.Context, layer model.Layer, id string) error

	// Load reads every record held for the layer. Records that fail to
	// parse are dropped and counted in skipped; they are never fatal.
	Load(ctx context.Context, layer model.Layer) (items []*model.Item, skipped int, err error)

	// Close releases backend resources.
	Close() error
}
