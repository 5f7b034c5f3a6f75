package model

import (
	"math"
	"time"
)

// ScoreParams holds the decay scoring constants. The defaults are
// empirically chosen, not derived from a model; treat them as tunable
// configuration rather than invariants.
type ScoreParams struct {
	// DecayWindowDays is the exponent base window: decay_factor is applied
	// once per this many days of age.
	DecayWindowDays float64 `yaml:"decay_window_days"`
	// TimeDecayFloor is the minimum value of the time-decay term.
	TimeDecayFloor float64 `yaml:"time_decay_floor"`
	// AccessDivisor converts access_count into a boost: 1 + count/divisor.
	AccessDivisor float64 `yaml:"access_divisor"`
	// AccessBoostCap caps the access boost term.
	AccessBoostCap float64 `yaml:"access_boost_cap"`
	// RecencyWindowDays is the span over which recency drops linearly.
	RecencyWindowDays float64 `yaml:"recency_window_days"`
	// RecencyFloor is the minimum value of the recency term.
	RecencyFloor float64 `yaml:"recency_floor"`
	// ScoreCap clamps the final score to [0, ScoreCap].
	ScoreCap float64 `yaml:"score_cap"`
	// DefaultDecayFactor is stamped on items saved without one.
	DefaultDecayFactor float64 `yaml:"default_decay_factor"`
	// ImportanceWeights multiplies the score per importance level.
	ImportanceWeights map[Importance]float64 `yaml:"importance_weights"`
}

// DefaultScoreParams returns the stock scoring constants:
// 30-day decay window, boost cap 2.0, recency floor 0.5, score cap 2.0.
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		DecayWindowDays:    30,
		TimeDecayFloor:     0.1,
		AccessDivisor:      10,
		AccessBoostCap:     2.0,
		RecencyWindowDays:  365,
		RecencyFloor:       0.5,
		ScoreCap:           2.0,
		DefaultDecayFactor: 0.95,
		ImportanceWeights: map[Importance]float64{
			ImportanceLow:      0.5,
			ImportanceMedium:   1.0,
			ImportanceHigh:     1.5,
			ImportanceCritical: 2.0,
		},
	}
}

func (p ScoreParams) importanceWeight(i Importance) float64 {
	if w, ok := p.ImportanceWeights[i]; ok {
		return w
	}
	return 1.0
}

// Score computes the item's retention-worthiness at the given instant.
// It is a pure function of the item's fields: recent, frequently used,
// explicitly important content scores highest. Each term is capped so no
// single factor dominates, and the result lies in [0, ScoreCap].
//
// A malformed created_at (zero or in the future) makes age unmeasurable;
// the function falls back to the caller-supplied quality score unchanged.
func Score(it *Item, now time.Time, p ScoreParams) float64 {
	if it.CreatedAt.IsZero() || it.CreatedAt.After(now) {
		return it.QualityScore
	}

	ageDays := it.AgeDays(now)

	factor := it.DecayFactor
	if factor <= 0 {
		factor = p.DefaultDecayFactor
	}
	timeDecay := math.Pow(factor, ageDays/p.DecayWindowDays)
	if timeDecay < p.TimeDecayFloor {
		timeDecay = p.TimeDecayFloor
	}

	boost := 1 + float64(it.AccessCount)/p.AccessDivisor
	if boost > p.AccessBoostCap {
		boost = p.AccessBoostCap
	}

	// Items never read fall back to creation time for recency.
	lastAccess := it.LastAccessed
	if lastAccess.IsZero() {
		lastAccess = it.CreatedAt
	}
	idleDays := now.Sub(lastAccess).Hours() / 24.0
	if idleDays < 0 {
		idleDays = 0
	}
	recency := 1 - idleDays/p.RecencyWindowDays
	if recency < p.RecencyFloor {
		recency = p.RecencyFloor
	}

	score := timeDecay * boost * recency * p.importanceWeight(it.Importance) * it.QualityScore
	if score < 0 {
		return 0
	}
	if score > p.ScoreCap {
		return p.ScoreCap
	}
	return score
}
