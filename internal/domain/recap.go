package domain

import "time"

// RecapStatusCompleted is the only status a persisted recap ever carries:
// records are written once, fully formed, and never updated.
const RecapStatusCompleted = "completed"

// Milestone is one milestone entry kept for display on an aggregation.
type Milestone struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created"`
}

// MilestoneSummary keeps the total count plus the most recent few for display.
type MilestoneSummary struct {
	TotalMilestones int         `json:"total_milestones"`
	Recent          []Milestone `json:"recent"`
}

// MediaSummary carries media counts and the capped highlight photo list.
type MediaSummary struct {
	ImageCount    int      `json:"image_count"`
	VideoCount    int      `json:"video_count"`
	HighlightURLs []string `json:"highlight_urls"`
}

// AggregationResult is the derived, in-memory summary of one (user, child,
// window). It is built fresh per call and discarded after the recap is
// constructed; it is never persisted.
type AggregationResult struct {
	ChildName    string `json:"child_name"`
	ChildAge     string `json:"child_age"`
	TotalEntries int    `json:"total_entries"`
	// Buckets maps period bucket keys (weekday names, "Week 1".."Week 4",
	// month names) to the joined entry text for that bucket. Daily recaps
	// have no buckets.
	Buckets map[string]string `json:"buckets"`
	// CombinedText joins all entry text in the window, newest first. The
	// daily prompt uses it since daily windows have no buckets.
	CombinedText  string           `json:"combined_text"`
	Milestones    MilestoneSummary `json:"milestones"`
	Media         MediaSummary     `json:"media"`
	FavoriteCount int              `json:"favorite_count"`
	// EntriesByChild is populated on cross-child aggregations (child id empty).
	EntriesByChild map[string]int `json:"entries_by_child,omitempty"`
}

// Recap is the generated narrative artifact. Recurring per-child recaps get a
// fresh id per write; cross-child weekly snippets use a deterministic hash of
// user and window so re-runs resolve to the same record.
type Recap struct {
	RecapID string  `json:"id" dynamodbav:"recap_id"`
	UserID  string  `json:"user_id" dynamodbav:"user_id"`
	ChildID *string `json:"child_id,omitempty" dynamodbav:"child_id"`
	// ChildIDs lists the contributing children for cross-child snippets,
	// where ChildID is absent.
	ChildIDs      []string   `json:"child_ids,omitempty" dynamodbav:"child_ids"`
	Period        PeriodKind `json:"period" dynamodbav:"period"`
	WindowStart   time.Time  `json:"window_start" dynamodbav:"window_start"`
	WindowEnd     time.Time  `json:"window_end" dynamodbav:"window_end"`
	Title         string     `json:"title" dynamodbav:"title"`
	Body          string     `json:"body" dynamodbav:"body"`
	TotalEntries  int        `json:"total_entries" dynamodbav:"total_entries"`
	MilestoneCnt  int        `json:"milestone_count" dynamodbav:"milestone_count"`
	ImageCount    int        `json:"image_count" dynamodbav:"image_count"`
	FavoriteCnt   int        `json:"favorite_count" dynamodbav:"favorite_count"`
	HighlightURLs []string   `json:"highlight_urls,omitempty" dynamodbav:"highlight_urls"`
	Status        string     `json:"status" dynamodbav:"status"`
	ProcessingMS  int64      `json:"processing_ms,omitempty" dynamodbav:"processing_ms"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
}

// SkippedResult reports an aggregation below the period's minimum entry
// threshold. This is a normal outcome, distinct from failure.
type SkippedResult struct {
	Reason          string `json:"reason"`
	TotalEntries    int    `json:"total_entries"`
	MinimumRequired int    `json:"minimum_required"`
}

const SkipReasonInsufficientEntries = "insufficient-entries"
