package memory

import "github.com/zerorone/xtool-memory/model"

// Index provides O(1)-average candidate lookup by a single dimension so
// filtered searches avoid full scans. Each layer owns one.
type Index struct {
	byType       map[string]idSet
	byTag        map[string]idSet
	byCategory   map[string]idSet
	byImportance map[string]idSet
}

type idSet map[string]struct{}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byType:       make(map[string]idSet),
		byTag:        make(map[string]idSet),
		byCategory:   make(map[string]idSet),
		byImportance: make(map[string]idSet),
	}
}

// Add inserts the item's id into the bucket for its type, each tag, its
// category and its importance.
func (ix *Index) Add(it *model.Item) {
	if it.Type != "" {
		addTo(ix.byType, it.Type, it.ID)
	}
	for _, tag := range it.Tags {
		addTo(ix.byTag, tag, it.ID)
	}
	if it.Category != "" {
		addTo(ix.byCategory, it.Category, it.ID)
	}
	addTo(ix.byImportance, string(it.Importance), it.ID)
}

// Remove deletes the item's id from exactly the buckets Add used. It must
// see the same field values Add saw: any mutation of an indexed field has
// to deindex with the old values first, or stale entries accumulate.
func (ix *Index) Remove(it *model.Item) {
	if it.Type != "" {
		dropFrom(ix.byType, it.Type, it.ID)
	}
	for _, tag := range it.Tags {
		dropFrom(ix.byTag, tag, it.ID)
	}
	if it.Category != "" {
		dropFrom(ix.byCategory, it.Category, it.ID)
	}
	dropFrom(ix.byImportance, string(it.Importance), it.ID)
}

// Filters selects index dimensions. Zero-valued dimensions are not applied.
type Filters struct {
	Type       string
	Tags       []string
	Category   string
	Importance model.Importance
}

func (f Filters) empty() bool {
	return f.Type == "" && len(f.Tags) == 0 && f.Category == "" && f.Importance == ""
}

// Candidates intersects the id sets of every supplied dimension (AND
// semantics). A nil result means no filter was given and the caller should
// scan everything; an empty non-nil result means nothing matched.
func (ix *Index) Candidates(f Filters) idSet {
	if f.empty() {
		return nil
	}

	var result idSet
	intersect := func(bucket idSet) {
		if result == nil {
			result = make(idSet, len(bucket))
			for id := range bucket {
				result[id] = struct{}{}
			}
			return
		}
		for id := range result {
			if _, ok := bucket[id]; !ok {
				delete(result, id)
			}
		}
	}

	if f.Type != "" {
		intersect(ix.byType[f.Type])
	}
	if f.Category != "" {
		intersect(ix.byCategory[f.Category])
	}
	if f.Importance != "" {
		intersect(ix.byImportance[string(f.Importance)])
	}
	for _, tag := range f.Tags {
		intersect(ix.byTag[tag])
	}
	if result == nil {
		result = idSet{}
	}
	return result
}

func addTo(buckets map[string]idSet, key, id string) {
	set, ok := buckets[key]
	if !ok {
		set = make(idSet)
		buckets[key] = set
	}
	set[id] = struct{}{}
}

func dropFrom(buckets map[string]idSet, key, id string) {
	set, ok := buckets[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(buckets, key)
	}
}
