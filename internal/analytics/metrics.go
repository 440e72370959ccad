// Package analytics derives per-user engagement metrics from normalized
// activity sets.
package analytics

import (
	"log/slog"
	"math"

	"redditscout/internal/model"
)

// Tunable score constants. The invariants (totality, non-negativity,
// determinism, recency weighting) hold for any values here.
const (
	// recencyWeight is the extra weight the most recent item gets over
	// the oldest when summing influence contributions.
	recencyWeight = 0.25
	// expertiseScale maps the [0,1] concentration index onto [0,100].
	expertiseScale = 100
)

// Compute derives metrics from an activity set. It is total: an empty
// or nil set yields all-zero metrics, and no field is ever NaN or Inf.
// Items are expected most-recent-first, as the fetcher returns them.
func Compute(items []model.ActivityItem) model.UserMetrics {
	m := model.UserMetrics{
		SubredditDistribution: map[string]int{},
		ItemCount:             len(items),
	}
	for _, it := range items {
		m.SubredditDistribution[it.Subreddit]++
		if it.Kind == model.KindPost {
			m.PostCount++
		} else {
			m.CommentCount++
		}
	}
	m.InfluenceScore = guard("influence", influence(items))
	m.ExpertiseSignal = guard("expertise", expertise(m.SubredditDistribution, len(items)))
	m.ActivityRate = guard("activity", activityRate(items))
	return m
}

// influence sums positive scores of non-deleted items, weighting recent
// items up to recencyWeight higher, then dampens with a square root so
// a few viral items cannot dominate sustained activity.
func influence(items []model.ActivityItem) float64 {
	n := len(items)
	raw := 0.0
	for i, it := range items {
		if it.IsDeleted || it.Score <= 0 {
			continue
		}
		w := 1.0
		if n > 1 {
			w += recencyWeight * float64(n-1-i) / float64(n-1)
		}
		raw += float64(it.Score) * w
	}
	return round2(math.Sqrt(raw))
}

// expertise is a Herfindahl concentration index over the subreddit
// distribution: 1.0 means all activity in one subreddit.
func expertise(dist map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	hhi := 0.0
	for _, c := range dist {
		p := float64(c) / float64(total)
		hhi += p * p
	}
	return round2(hhi * expertiseScale)
}

// activityRate is items per day over the observed span. Defined as 0
// for fewer than two items or a zero span.
func activityRate(items []model.ActivityItem) float64 {
	if len(items) < 2 {
		return 0
	}
	oldest, newest := items[0].CreatedAt, items[0].CreatedAt
	for _, it := range items[1:] {
		if it.CreatedAt.Before(oldest) {
			oldest = it.CreatedAt
		}
		if it.CreatedAt.After(newest) {
			newest = it.CreatedAt
		}
	}
	span := newest.Sub(oldest)
	if span <= 0 {
		return 0
	}
	perDay := float64(len(items)) / span.Hours() * 24
	return round2(perDay)
}

// guard enforces the numeric contract: a NaN, Inf, or negative value is
// a defect in the formula above, logged and replaced by zero.
func guard(name string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		slog.Error("metric guard tripped", "metric", name, "value", v)
		return 0
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
