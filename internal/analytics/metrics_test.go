package analytics

import (
	"math"
	"testing"
	"time"

	"redditscout/internal/model"
)

func item(kind model.ItemKind, sub string, score int, at time.Time) model.ActivityItem {
	return model.ActivityItem{Kind: kind, Subreddit: sub, Score: score, CreatedAt: at}
}

func TestComputeEmptySetIsAllZeros(t *testing.T) {
	for _, items := range [][]model.ActivityItem{nil, {}} {
		m := Compute(items)
		for name, v := range map[string]float64{
			"influence": m.InfluenceScore,
			"expertise": m.ExpertiseSignal,
			"activity":  m.ActivityRate,
		} {
			if v != 0 {
				t.Errorf("%s: expected 0, got %v", name, v)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s: not finite: %v", name, v)
			}
		}
		if m.SubredditDistribution == nil {
			t.Error("distribution must be non-nil for empty input")
		}
	}
}

func TestInfluenceRecencyWeighting(t *testing.T) {
	now := time.Now().UTC()
	// Same score multiset; A has the big score most recent.
	a := []model.ActivityItem{
		item(model.KindPost, "golang", 10, now),
		item(model.KindPost, "golang", 1, now.Add(-time.Hour)),
	}
	b := []model.ActivityItem{
		item(model.KindPost, "golang", 1, now),
		item(model.KindPost, "golang", 10, now.Add(-time.Hour)),
	}
	ma, mb := Compute(a), Compute(b)
	if ma.InfluenceScore <= mb.InfluenceScore {
		t.Fatalf("recent high score must outrank old high score: %v vs %v",
			ma.InfluenceScore, mb.InfluenceScore)
	}
}

func TestInfluenceIgnoresNegativeAndDeleted(t *testing.T) {
	now := time.Now().UTC()
	items := []model.ActivityItem{
		item(model.KindComment, "golang", -50, now),
		{Kind: model.KindPost, Subreddit: "golang", Score: 100, CreatedAt: now, IsDeleted: true},
	}
	m := Compute(items)
	if m.InfluenceScore != 0 {
		t.Fatalf("expected zero influence, got %v", m.InfluenceScore)
	}
	// Distribution still counts everything.
	if m.SubredditDistribution["golang"] != 2 {
		t.Fatalf("distribution should count all items: %+v", m.SubredditDistribution)
	}
}

func TestInfluenceDampensViralSpikes(t *testing.T) {
	now := time.Now().UTC()
	viral := []model.ActivityItem{item(model.KindPost, "golang", 10000, now)}
	steady := make([]model.ActivityItem, 0, 40)
	for i := 0; i < 40; i++ {
		steady = append(steady, item(model.KindComment, "golang", 30, now.Add(-time.Duration(i)*time.Hour)))
	}
	mv, ms := Compute(viral), Compute(steady)
	if mv.InfluenceScore > 10*ms.InfluenceScore {
		t.Fatalf("dampening too weak: viral=%v steady=%v", mv.InfluenceScore, ms.InfluenceScore)
	}
}

func TestExpertiseConcentration(t *testing.T) {
	now := time.Now().UTC()
	focused := []model.ActivityItem{
		item(model.KindPost, "london", 1, now),
		item(model.KindComment, "london", 1, now),
		item(model.KindComment, "london", 1, now),
		item(model.KindComment, "ukjobs", 1, now),
	}
	spread := []model.ActivityItem{
		item(model.KindPost, "a", 1, now),
		item(model.KindComment, "b", 1, now),
		item(model.KindComment, "c", 1, now),
		item(model.KindComment, "d", 1, now),
	}
	mf, ms := Compute(focused), Compute(spread)
	if mf.ExpertiseSignal <= ms.ExpertiseSignal {
		t.Fatalf("focused user must score higher: %v vs %v", mf.ExpertiseSignal, ms.ExpertiseSignal)
	}
	single := Compute(focused[:1])
	if single.ExpertiseSignal != 100 {
		t.Fatalf("single-subreddit set should hit the scale cap, got %v", single.ExpertiseSignal)
	}
}

func TestActivityRate(t *testing.T) {
	now := time.Now().UTC()
	items := []model.ActivityItem{
		item(model.KindPost, "golang", 1, now),
		item(model.KindComment, "golang", 1, now.Add(-24*time.Hour)),
		item(model.KindComment, "golang", 1, now.Add(-48*time.Hour)),
	}
	m := Compute(items)
	if m.ActivityRate != 1.5 {
		t.Fatalf("expected 1.5 items/day, got %v", m.ActivityRate)
	}

	if r := Compute(items[:1]).ActivityRate; r != 0 {
		t.Fatalf("single item must have zero rate, got %v", r)
	}
	same := []model.ActivityItem{
		item(model.KindPost, "golang", 1, now),
		item(model.KindPost, "golang", 1, now),
	}
	if r := Compute(same).ActivityRate; r != 0 {
		t.Fatalf("zero span must have zero rate, got %v", r)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	items := []model.ActivityItem{
		item(model.KindPost, "golang", 12, now),
		item(model.KindComment, "rust", 4, now.Add(-time.Hour)),
		item(model.KindComment, "golang", 7, now.Add(-2*time.Hour)),
	}
	a, b := Compute(items), Compute(items)
	if a.InfluenceScore != b.InfluenceScore || a.ExpertiseSignal != b.ExpertiseSignal || a.ActivityRate != b.ActivityRate {
		t.Fatalf("metrics must be deterministic: %+v vs %+v", a, b)
	}
}
