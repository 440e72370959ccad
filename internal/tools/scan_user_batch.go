package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"redditscout/internal/batch"
	"redditscout/internal/model"
)

// BatchResult wraps the ranked comparison for display.
type BatchResult struct {
	model.ComparisonResult
}

func (t *Toolkit) scanUserBatch(ctx context.Context, raw map[string]any) (Result, error) {
	p, verr := scanUserBatchSchema.Validate(raw)
	if verr != nil {
		return nil, verr
	}
	q := batch.Query{
		Usernames:       p.Strs("usernames"),
		Depth:           p.Str("analysis_depth"),
		FocusSubreddits: p.Strs("focus_subreddits"),
		Metric:          p.Str("comparison_metrics"),
	}
	res := batch.Compare(ctx, t.fetcher, q, t.batch)
	if t.runs != nil {
		if _, err := t.runs.Record(ctx, time.Now().UTC(), res); err != nil {
			slog.Warn("run history record failed", "error", err)
		}
	}
	return &BatchResult{res}, nil
}

func (r *BatchResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparison of %d users (depth=%s, metric=%s)", len(r.Users), r.Depth, r.Metric)
	if r.Incomplete {
		b.WriteString(" [incomplete]")
	}
	b.WriteString("\n")
	for _, u := range r.Users {
		fmt.Fprintf(&b, "%2d. u/%-20s %-8s influence=%.2f expertise=%.2f activity=%.2f",
			u.Rank, u.Username, u.Status, u.Metrics.InfluenceScore, u.Metrics.ExpertiseSignal, u.Metrics.ActivityRate)
		if r.Metric == "all" {
			fmt.Fprintf(&b, " composite=%.3f", u.Composite)
		}
		if u.Status == model.StatusFailed && u.Error != "" {
			fmt.Fprintf(&b, " (%s)", u.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}
