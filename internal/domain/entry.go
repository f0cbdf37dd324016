package domain

import "time"

// MediaKind discriminates entry media items.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// MediaItem is one photo or video attached to a journal entry. URL is the
// public address when present; StorageKey points at the S3 object when the
// media has not been published and needs a presigned URL.
type MediaItem struct {
	Kind         string  `json:"kind" dynamodbav:"kind"`
	URL          string  `json:"url" dynamodbav:"url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty" dynamodbav:"thumbnail_url"`
	StorageKey   *string `json:"storage_key,omitempty" dynamodbav:"storage_key"`
}

// JournalEntry is one raw timestamped entry written by a user. An entry may
// reference several children. Entries are immutable once aggregated; the
// recap pipeline only ever reads them.
type JournalEntry struct {
	EntryID     string      `json:"id" dynamodbav:"entry_id"`
	UserID      string      `json:"user_id" dynamodbav:"user_id"`
	ChildIDs    []string    `json:"child_ids" dynamodbav:"child_ids"`
	Text        string      `json:"text" dynamodbav:"text"`
	Media       []MediaItem `json:"media,omitempty" dynamodbav:"media"`
	IsFavorited bool        `json:"is_favorited" dynamodbav:"is_favorited"`
	IsMilestone bool        `json:"is_milestone" dynamodbav:"is_milestone"`
	// AgeSnapshots maps child id to the child's age string captured when the
	// entry was written.
	AgeSnapshots map[string]string `json:"age_snapshots,omitempty" dynamodbav:"age_snapshots"`
	CreatedAt    time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time         `json:"updated" dynamodbav:"updated_at"`
}

type CreateEntryRequest struct {
	UserID      string      `json:"user_id" validate:"required"`
	ChildIDs    []string    `json:"child_ids" validate:"required,min=1,dive,required"`
	Text        string      `json:"text" validate:"required"`
	Media       []MediaItem `json:"media" validate:"dive"`
	IsFavorited bool        `json:"is_favorited"`
	IsMilestone bool        `json:"is_milestone"`
}
