// Package normalize converts raw Reddit things into canonical activity
// items and report shapes.
package normalize

import (
	"strings"
	"time"

	"redditscout/internal/model"
	"redditscout/internal/redditclient"
)

// Options filter normalization output.
type Options struct {
	// ContentType keeps only the requested kind: posts, comments, or
	// both (the default).
	ContentType string
	// Subreddits restricts items to these names (case-insensitive).
	// Empty means no filter.
	Subreddits []string
}

// Normalize maps raw listing things to activity items, preserving input
// order. Malformed records are skipped and counted, never propagated as
// errors; deletion is preserved as a flag, not interpreted.
func Normalize(things []redditclient.Thing, opts Options) ([]model.ActivityItem, int) {
	var allow map[string]struct{}
	if len(opts.Subreddits) > 0 {
		allow = make(map[string]struct{}, len(opts.Subreddits))
		for _, s := range opts.Subreddits {
			allow[strings.ToLower(s)] = struct{}{}
		}
	}
	items := make([]model.ActivityItem, 0, len(things))
	skipped := 0
	for _, th := range things {
		item, ok := toItem(th)
		if !ok {
			skipped++
			continue
		}
		switch opts.ContentType {
		case "posts":
			if item.Kind != model.KindPost {
				continue
			}
		case "comments":
			if item.Kind != model.KindComment {
				continue
			}
		}
		if allow != nil {
			if _, ok := allow[strings.ToLower(item.Subreddit)]; !ok {
				continue
			}
		}
		items = append(items, item)
	}
	return items, skipped
}

func toItem(th redditclient.Thing) (model.ActivityItem, bool) {
	var kind model.ItemKind
	switch th.Kind {
	case redditclient.KindTPost:
		kind = model.KindPost
	case redditclient.KindTComment:
		kind = model.KindComment
	default:
		return model.ActivityItem{}, false
	}
	d := th.Data
	if d.CreatedUTC <= 0 || d.Subreddit == "" {
		return model.ActivityItem{}, false
	}
	it := model.ActivityItem{
		Kind:      kind,
		ID:        d.ID,
		Subreddit: d.Subreddit,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		Score:     d.Score,
		IsDeleted: isDeleted(d),
	}
	if kind == model.KindPost {
		it.CommentCount = d.NumComments
	}
	return it, true
}

func isDeleted(d redditclient.ThingData) bool {
	if d.RemovedByCategory != "" || d.Author == "[deleted]" {
		return true
	}
	switch d.Body {
	case "[deleted]", "[removed]":
		return true
	}
	switch d.Selftext {
	case "[deleted]", "[removed]":
		return true
	}
	return false
}

// Post maps a t3 thing to a report post.
func Post(th redditclient.Thing) model.Post {
	d := th.Data
	return model.Post{
		ID:           d.ID,
		Subreddit:    d.Subreddit,
		Author:       d.Author,
		Title:        d.Title,
		SelfText:     d.Selftext,
		URL:          d.URL,
		Score:        d.Score,
		UpvoteRatio:  d.UpvoteRatio,
		CommentCount: d.NumComments,
		CreatedAt:    time.Unix(int64(d.CreatedUTC), 0).UTC(),
		IsDeleted:    isDeleted(d),
	}
}

// Comment maps a t1 thing to a report comment at the given tree depth.
func Comment(th redditclient.Thing, depth int) model.Comment {
	d := th.Data
	return model.Comment{
		ID:        d.ID,
		Author:    d.Author,
		Body:      d.Body,
		Score:     d.Score,
		Depth:     depth,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		IsDeleted: isDeleted(d),
	}
}
