// Package model defines the memory item record and its decay scoring.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Layer identifies which storage tier owns an item.
type Layer string

const (
	LayerGlobal  Layer = "global"
	LayerProject Layer = "project"
	LayerSession Layer = "session"
)

// Layers lists the tiers from most to least durable. This is also the
// probe order for layer-less lookups.
var Layers = []Layer{LayerGlobal, LayerProject, LayerSession}

// ErrInvalidLayer is returned when a caller names a layer outside the
// fixed set of three. This is a precondition violation, not a runtime fault.
var ErrInvalidLayer = errors.New("model: invalid layer")

// ErrInvalidImportance is returned for an unknown importance level.
var ErrInvalidImportance = errors.New("model: invalid importance")

// ParseLayer validates a layer name. An empty string is not a valid layer;
// callers that treat empty as "default" or "all" must handle it themselves.
func ParseLayer(s string) (Layer, error) {
	switch Layer(s) {
	case LayerGlobal, LayerProject, LayerSession:
		return Layer(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLayer, s)
}

// Importance is the caller-declared priority of an item.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

var importanceRank = map[Importance]int{
	ImportanceLow:      0,
	ImportanceMedium:   1,
	ImportanceHigh:     2,
	ImportanceCritical: 3,
}

// ParseImportance validates an importance level.
func ParseImportance(s string) (Importance, error) {
	if _, ok := importanceRank[Importance(s)]; ok {
		return Importance(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidImportance, s)
}

// Rank returns the ordering position of an importance level
// (low < medium < high < critical). Unknown levels rank as medium.
func (i Importance) Rank() int {
	if r, ok := importanceRank[i]; ok {
		return r
	}
	return importanceRank[ImportanceMedium]
}

// Item is one stored memory fragment plus its metadata. The JSON tags define
// the durable record format: one flat document per item, addressed by ID.
// Unknown fields in persisted records are ignored on load.
type Item struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Layer      Layer      `json:"layer"`
	Type       string     `json:"type,omitempty"`
	Category   string     `json:"category,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Importance Importance `json:"importance"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastAccessed time.Time `json:"last_accessed"`

	// QualityScore is a caller-supplied prior multiplier (default 1.0),
	// distinct from the computed decay score.
	QualityScore float64 `json:"quality_score"`
	AccessCount  int     `json:"access_count"`

	// RelevanceScore is an ephemeral ranking hint supplied by the caller.
	// It carries no meaning beyond ordering the current search results.
	RelevanceScore float64 `json:"relevance_score,omitempty"`

	// RelatedItems holds weak references to other item IDs: relation and
	// lookup only, never ownership. A dangling ID after the target is
	// deleted is tolerated, not an error.
	RelatedItems []string `json:"related_items,omitempty"`

	// Per-item overrides of the owning layer's retention policy.
	DecayFactor      float64 `json:"decay_factor"`
	MinRetentionDays int     `json:"min_retention_days,omitempty"`
	AutoCleanup      bool    `json:"auto_cleanup"`

	// Embedding is reserved for a future semantic index. Nothing computes
	// or ranks by it today.
	Embedding []float64 `json:"embedding,omitempty"`
}

// Clone returns a deep copy of the item. Reads hand out clones so callers
// cannot alias layer-owned state.
func (it *Item) Clone() *Item {
	cp := *it
	if it.Tags != nil {
		cp.Tags = append([]string(nil), it.Tags...)
	}
	if it.RelatedItems != nil {
		cp.RelatedItems = append([]string(nil), it.RelatedItems...)
	}
	if it.Embedding != nil {
		cp.Embedding = append([]float64(nil), it.Embedding...)
	}
	return &cp
}

// AgeDays returns the item's age in days at the given instant.
// A zero or future created_at yields 0.
func (it *Item) AgeDays(now time.Time) float64 {
	if it.CreatedAt.IsZero() || it.CreatedAt.After(now) {
		return 0
	}
	return now.Sub(it.CreatedAt).Hours() / 24.0
}

// Touch records a successful read: updated_at and last_accessed move to now
// and access_count increments. The counter never decreases.
func (it *Item) Touch(now time.Time) {
	it.UpdatedAt = now
	it.LastAccessed = now
	it.AccessCount++
}
