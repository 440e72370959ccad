package model

import "time"

// ItemKind distinguishes submissions from comments.
type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// ActivityItem is one normalized post or comment. Immutable once built.
type ActivityItem struct {
	Kind      ItemKind
	ID        string
	Subreddit string
	CreatedAt time.Time
	Score     int
	// CommentCount is meaningful for posts only.
	CommentCount int
	IsDeleted    bool
}

// FetchStatus describes how complete a user's snapshot is.
type FetchStatus string

const (
	StatusOK      FetchStatus = "ok"
	StatusPartial FetchStatus = "partial"
	StatusFailed  FetchStatus = "failed"
)

// UserSnapshot holds one user's fetched activity for a single batch run.
// Items are ordered most-recent-first.
type UserSnapshot struct {
	Username string
	Items    []ActivityItem
	Status   FetchStatus
	// Skipped counts malformed raw records dropped during normalization.
	Skipped int
	// Error is set iff Status is failed.
	Error string
}

// UserMetrics are the derived engagement scores for one user.
// All fields are finite and non-negative; an empty item set yields zeros.
type UserMetrics struct {
	InfluenceScore        float64        `json:"influence_score"`
	ExpertiseSignal       float64        `json:"expertise_signal"`
	ActivityRate          float64        `json:"activity_rate"`
	SubredditDistribution map[string]int `json:"subreddit_distribution"`
	ItemCount             int            `json:"item_count"`
	PostCount             int            `json:"post_count"`
	CommentCount          int            `json:"comment_count"`
}

// RankedUser is one entry of a batch comparison.
type RankedUser struct {
	Rank     int         `json:"rank"`
	Username string      `json:"username"`
	Status   FetchStatus `json:"status"`
	Error    string      `json:"error,omitempty"`
	Metrics  UserMetrics `json:"metrics"`
	// Composite is the weighted min-max score; set only for metric "all".
	Composite float64 `json:"composite,omitempty"`
}

// ComparisonResult is the ranked output of a batch user scan.
// Users always has one entry per requested username, failures included.
type ComparisonResult struct {
	Metric     string       `json:"metric"`
	Depth      string       `json:"depth"`
	Users      []RankedUser `json:"users"`
	Incomplete bool         `json:"incomplete,omitempty"`
}

// Post is a subreddit feed or search result entry.
type Post struct {
	ID           string    `json:"id"`
	Subreddit    string    `json:"subreddit"`
	Author       string    `json:"author"`
	Title        string    `json:"title"`
	SelfText     string    `json:"self_text,omitempty"`
	URL          string    `json:"url,omitempty"`
	Score        int       `json:"score"`
	UpvoteRatio  float64   `json:"upvote_ratio,omitempty"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	IsDeleted    bool      `json:"is_deleted,omitempty"`
}

// Comment is one node of a thread's comment tree, flattened with Depth.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	Depth     int       `json:"depth"`
	CreatedAt time.Time `json:"created_at"`
	IsDeleted bool      `json:"is_deleted,omitempty"`
}

// Thread is a post together with its comment tree.
type Thread struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}
