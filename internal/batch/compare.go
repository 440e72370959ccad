// Package batch fans user-analysis pipelines out across a username list
// and ranks the results under a shared time and topic frame.
package batch

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"redditscout/internal/analytics"
	"redditscout/internal/model"
	"redditscout/internal/normalize"
	"redditscout/internal/redditclient"
)

// Composite weights for comparison_metrics=all, applied to min-max
// normalized dimensions.
const (
	influenceWeight = 0.4
	expertiseWeight = 0.3
	activityWeight  = 0.3
)

// DepthCap maps an analysis depth to its per-user item cap.
func DepthCap(depth string) int {
	switch depth {
	case "basic":
		return 50
	case "deep":
		return 250
	default:
		return 100
	}
}

// Query is a validated batch comparison request.
type Query struct {
	Usernames       []string
	Depth           string
	FocusSubreddits []string
	Metric          string
}

// Options bound the fan-out.
type Options struct {
	// MaxConcurrency caps parallel per-user pipelines; the effective
	// limit is min(len(usernames), MaxConcurrency).
	MaxConcurrency int
	// UserTimeout bounds each user's fetch; a timed-out user is treated
	// like a failed fetch.
	UserTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 5
	}
	if o.UserTimeout <= 0 {
		o.UserTimeout = 20 * time.Second
	}
	return o
}

// Compare runs one pipeline per username and returns the ranked result.
// One user's failure never aborts the batch: failed and timed-out users
// appear with zero metrics and a failed status. The result always has
// exactly one entry per requested username.
func Compare(ctx context.Context, fetcher redditclient.Client, q Query, opts Options) model.ComparisonResult {
	opts = opts.withDefaults()
	itemCap := DepthCap(q.Depth)
	limit := opts.MaxConcurrency
	if len(q.Usernames) < limit {
		limit = len(q.Usernames)
	}

	snapshots := make([]model.UserSnapshot, len(q.Usernames))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, name := range q.Usernames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			snapshots[i] = fetchUser(ctx, fetcher, name, itemCap, q.FocusSubreddits, opts.UserTimeout)
		}(i, name)
	}
	wg.Wait()

	users := make([]model.RankedUser, len(snapshots))
	for i, snap := range snapshots {
		users[i] = model.RankedUser{
			Username: snap.Username,
			Status:   snap.Status,
			Error:    snap.Error,
			Metrics:  analytics.Compute(snap.Items),
		}
	}
	rank(users, q.Metric)

	return model.ComparisonResult{
		Metric:     q.Metric,
		Depth:      q.Depth,
		Users:      users,
		Incomplete: ctx.Err() != nil,
	}
}

// fetchUser runs the fetch+normalize pipeline for one user. It never
// returns an error: failures become a failed snapshot.
func fetchUser(ctx context.Context, fetcher redditclient.Client, name string, itemCap int, focus []string, timeout time.Duration) model.UserSnapshot {
	uctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	things, err := fetcher.FetchUserActivity(uctx, name, itemCap, "both")
	if err != nil {
		slog.Warn("user fetch failed", "username", name, "kind", redditclient.KindOf(err), "error", err)
		return model.UserSnapshot{Username: name, Status: model.StatusFailed, Error: err.Error()}
	}
	items, skipped := normalize.Normalize(things, normalize.Options{Subreddits: focus})
	status := model.StatusOK
	if len(things) >= itemCap || (len(items) == 0 && len(things) > 0) {
		status = model.StatusPartial
	}
	return model.UserSnapshot{Username: name, Items: items, Status: status, Skipped: skipped}
}

// rank orders users by the requested dimension, or by the weighted
// composite of min-max normalized dimensions for "all". Ties break by
// username for determinism.
func rank(users []model.RankedUser, metric string) {
	key := func(u model.RankedUser) float64 {
		switch metric {
		case "influence":
			return u.Metrics.InfluenceScore
		case "expertise":
			return u.Metrics.ExpertiseSignal
		case "activity":
			return u.Metrics.ActivityRate
		default:
			return u.Composite
		}
	}
	if metric == "all" || metric == "" {
		setComposites(users)
	}
	sort.Slice(users, func(i, j int) bool {
		ki, kj := key(users[i]), key(users[j])
		if ki != kj {
			return ki > kj
		}
		return users[i].Username < users[j].Username
	})
	for i := range users {
		users[i].Rank = i + 1
	}
}

func setComposites(users []model.RankedUser) {
	inf := normalized(users, func(m model.UserMetrics) float64 { return m.InfluenceScore })
	exp := normalized(users, func(m model.UserMetrics) float64 { return m.ExpertiseSignal })
	act := normalized(users, func(m model.UserMetrics) float64 { return m.ActivityRate })
	for i := range users {
		c := influenceWeight*inf[i] + expertiseWeight*exp[i] + activityWeight*act[i]
		if math.IsNaN(c) || math.IsInf(c, 0) {
			c = 0
		}
		users[i].Composite = math.Round(c*1000) / 1000
	}
}

// normalized min-max scales one dimension across the batch. A constant
// dimension contributes 0 for everyone.
func normalized(users []model.RankedUser, dim func(model.UserMetrics) float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, u := range users {
		v := dim(u.Metrics)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(users))
	if hi <= lo {
		return out
	}
	for i, u := range users {
		out[i] = (dim(u.Metrics) - lo) / (hi - lo)
	}
	return out
}
