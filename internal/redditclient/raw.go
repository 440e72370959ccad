package redditclient

import "encoding/json"

// Raw wire structs matching Reddit's listing JSON exactly.

const (
	// Thing kinds as Reddit encodes them.
	KindTComment = "t1"
	KindTPost    = "t3"
	KindTMore    = "more"
	KindTListing = "Listing"
)

// Thing is one element of a listing: a post (t3), a comment (t1), or a
// "more" stub.
type Thing struct {
	Kind string    `json:"kind"`
	Data ThingData `json:"data"`
}

// ThingData is the field superset shared by posts and comments. Fields
// not present for a given kind decode to their zero value.
type ThingData struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Subreddit         string  `json:"subreddit"`
	Author            string  `json:"author"`
	Title             string  `json:"title"`
	Selftext          string  `json:"selftext"`
	Body              string  `json:"body"`
	URL               string  `json:"url"`
	Permalink         string  `json:"permalink"`
	Score             int     `json:"score"`
	UpvoteRatio       float64 `json:"upvote_ratio"`
	NumComments       int     `json:"num_comments"`
	CreatedUTC        float64 `json:"created_utc"`
	RemovedByCategory string  `json:"removed_by_category"`
	// Replies is a nested listing for comments, or the empty string.
	Replies json.RawMessage `json:"replies"`
}

// Listing is Reddit's paginated container.
type Listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []Thing `json:"children"`
	} `json:"data"`
}

// RepliesListing decodes the nested replies of a comment. Reddit encodes
// "no replies" as an empty string, not an empty listing.
func (d ThingData) RepliesListing() []Thing {
	if len(d.Replies) == 0 || string(d.Replies) == `""` {
		return nil
	}
	var l Listing
	if err := json.Unmarshal(d.Replies, &l); err != nil {
		return nil
	}
	return l.Data.Children
}
