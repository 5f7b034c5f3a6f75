package memory

import "github.com/zerorone/xtool-memory/model"

// PromotionRule decides whether an item qualifies for the next tier up.
// All conditions must hold against the item's live decay score.
type PromotionRule struct {
	MinScore       float64          `yaml:"min_score"`
	MinAccessCount int              `yaml:"min_access_count"`
	MinImportance  model.Importance `yaml:"min_importance"`
	MinTags        int              `yaml:"min_tags"`
}

// Qualifies reports whether the item, at the given live score, meets every
// condition of the rule.
func (r PromotionRule) Qualifies(it *model.Item, score float64) bool {
	if score < r.MinScore {
		return false
	}
	if it.AccessCount < r.MinAccessCount {
		return false
	}
	if r.MinImportance != "" && it.Importance.Rank() < r.MinImportance.Rank() {
		return false
	}
	if len(it.Tags) < r.MinTags {
		return false
	}
	return true
}

// RetentionPolicy is a layer's expiry-and-promotion configuration: items
// below Floor that have outlived MaxAgeDays are eligible for cleanup, and a
// non-nil Promotion rule feeds one tier up. A nil rule marks the terminal
// layer.
type RetentionPolicy struct {
	Floor      float64        `yaml:"floor"`
	MaxAgeDays float64        `yaml:"max_age_days"`
	Promotion  *PromotionRule `yaml:"promotion,omitempty"`
}

// DefaultPolicies returns the stock retention table:
//
//	global   floor 0.3, max age 730d, terminal
//	project  floor 0.2, max age 365d, promotes at score>=1.5, access>=10, importance>=high, >=3 tags
//	session  floor 0.1, max age   7d, promotes at score>=1.0, access>=5,  importance>=medium
func DefaultPolicies() map[model.Layer]RetentionPolicy {
	return map[model.Layer]RetentionPolicy{
		model.LayerGlobal: {
			Floor:      0.3,
			MaxAgeDays: 730,
		},
		model.LayerProject: {
			Floor:      0.2,
			MaxAgeDays: 365,
			Promotion: &PromotionRule{
				MinScore:       1.5,
				MinAccessCount: 10,
				MinImportance:  model.ImportanceHigh,
				MinTags:        3,
			},
		},
		model.LayerSession: {
			Floor:      0.1,
			MaxAgeDays: 7,
			Promotion: &PromotionRule{
				MinScore:       1.0,
				MinAccessCount: 5,
				MinImportance:  model.ImportanceMedium,
			},
		},
	}
}

// nextLayer maps each promoting layer to its target tier.
var nextLayer = map[model.Layer]model.Layer{
	model.LayerSession: model.LayerProject,
	model.LayerProject: model.LayerGlobal,
}
