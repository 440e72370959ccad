package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"redditscout/internal/analytics"
	"redditscout/internal/model"
	"redditscout/internal/normalize"
)

// AnalyzeUserResult is the single-user activity report.
type AnalyzeUserResult struct {
	Username string            `json:"username"`
	Status   model.FetchStatus `json:"status"`
	Skipped  int               `json:"skipped_records,omitempty"`
	Metrics  model.UserMetrics `json:"metrics"`
}

func (t *Toolkit) analyzeUser(ctx context.Context, raw map[string]any) (Result, error) {
	p, verr := analyzeUserSchema.Validate(raw)
	if verr != nil {
		return nil, verr
	}
	username := p.Str("username")
	limit := p.Int("activity_limit")
	contentTypes := p.Str("content_types")
	subs := p.Strs("subreddit_filter")

	things, err := t.fetcher.FetchUserActivity(ctx, username, limit, contentTypes)
	if err != nil {
		return nil, err
	}
	items, skipped := normalize.Normalize(things, normalize.Options{ContentType: contentTypes, Subreddits: subs})
	status := model.StatusOK
	if len(things) >= limit || (len(items) == 0 && len(things) > 0) {
		status = model.StatusPartial
	}
	return &AnalyzeUserResult{
		Username: username,
		Status:   status,
		Skipped:  skipped,
		Metrics:  analytics.Compute(items),
	}, nil
}

func (r *AnalyzeUserResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "User u/%s (%s, %d items", r.Username, r.Status, r.Metrics.ItemCount)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", r.Skipped)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "  influence=%.2f expertise=%.2f activity=%.2f/day\n",
		r.Metrics.InfluenceScore, r.Metrics.ExpertiseSignal, r.Metrics.ActivityRate)
	fmt.Fprintf(&b, "  posts=%d comments=%d\n", r.Metrics.PostCount, r.Metrics.CommentCount)
	if len(r.Metrics.SubredditDistribution) > 0 {
		b.WriteString("  subreddits:")
		for _, sub := range sortedKeys(r.Metrics.SubredditDistribution) {
			fmt.Fprintf(&b, " r/%s=%d", sub, r.Metrics.SubredditDistribution[sub])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
