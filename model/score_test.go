package model

import (
	"testing"
	"time"
)

func testItem(age time.Duration, now time.Time) *Item {
	created := now.Add(-age)
	return &Item{
		ID:           "01TEST",
		Content:      "fact",
		Layer:        LayerSession,
		Importance:   ImportanceMedium,
		CreatedAt:    created,
		UpdatedAt:    created,
		LastAccessed: created,
		QualityScore: 1.0,
		DecayFactor:  0.95,
	}
}

func TestScoreBounds(t *testing.T) {
	now := time.Now()
	p := DefaultScoreParams()

	ages := []time.Duration{0, time.Hour, 24 * time.Hour, 100 * 24 * time.Hour, 3000 * 24 * time.Hour}
	counts := []int{0, 1, 5, 50, 10000}
	for _, imp := range []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical} {
		for _, age := range ages {
			for _, count := range counts {
				it := testItem(age, now)
				it.Importance = imp
				it.AccessCount = count
				s := Score(it, now, p)
				if s < 0 || s > p.ScoreCap {
					t.Fatalf("score %v out of [0, %v] for age=%v count=%d imp=%s", s, p.ScoreCap, age, count, imp)
				}
			}
		}
	}
}

func TestScoreMonotoneInAge(t *testing.T) {
	now := time.Now()
	p := DefaultScoreParams()

	prev := -1.0
	for days := 0; days <= 900; days += 30 {
		it := testItem(time.Duration(days)*24*time.Hour, now)
		// Hold access fields fixed so only age varies.
		it.AccessCount = 3
		it.LastAccessed = now
		s := Score(it, now, p)
		if prev >= 0 && s > prev+1e-12 {
			t.Fatalf("score increased with age: %v days gives %v, previous %v", days, s, prev)
		}
		prev = s
	}
}

func TestScoreMalformedTimestampFallsBack(t *testing.T) {
	now := time.Now()
	p := DefaultScoreParams()

	zero := &Item{QualityScore: 0.7}
	if got := Score(zero, now, p); got != 0.7 {
		t.Errorf("zero created_at: expected quality score 0.7, got %v", got)
	}

	future := testItem(0, now)
	future.CreatedAt = now.Add(time.Hour)
	future.QualityScore = 1.3
	if got := Score(future, now, p); got != 1.3 {
		t.Errorf("future created_at: expected quality score 1.3, got %v", got)
	}
}

func TestScoreImportanceOrdering(t *testing.T) {
	now := time.Now()
	p := DefaultScoreParams()

	// Old enough that nothing clamps.
	var scores []float64
	for _, imp := range []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical} {
		it := testItem(200*24*time.Hour, now)
		it.Importance = imp
		scores = append(scores, Score(it, now, p))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] <= scores[i-1] {
			t.Fatalf("importance should raise the score: %v", scores)
		}
	}
}

func TestScoreClampsAtCap(t *testing.T) {
	// Fresh high-importance item read five times: time_decay ~1.0,
	// recency ~1.0, boost 1.5, weight 1.5 -> raw 2.25, clamped to 2.0.
	now := time.Now()
	p := DefaultScoreParams()

	it := testItem(0, now)
	it.Importance = ImportanceHigh
	it.AccessCount = 5
	it.LastAccessed = now

	if got := Score(it, now, p); got != 2.0 {
		t.Errorf("expected clamped score 2.0, got %v", got)
	}
}

func TestScoreAccessBoostCapped(t *testing.T) {
	now := time.Now()
	p := DefaultScoreParams()

	it := testItem(0, now)
	it.Importance = ImportanceLow
	it.AccessCount = 1000000
	it.LastAccessed = now

	// boost caps at 2.0, weight 0.5 -> exactly 1.0
	got := Score(it, now, p)
	if got < 0.99 || got > 1.01 {
		t.Errorf("expected ~1.0 with capped boost, got %v", got)
	}
}
