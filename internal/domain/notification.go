package domain

import (
	"fmt"
	"time"
)

// Notification is both the user-visible inbox entry and the at-most-once
// send lock for a recap: its id is deterministic per (period, user, recap),
// and the create-only write that stores it is what gates the push send.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	ChildID        *string   `json:"child_id,omitempty" dynamodbav:"child_id"`
	RecapID        string    `json:"recap_id" dynamodbav:"recap_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	Readed         int       `json:"readed" dynamodbav:"readed"` // legacy field name preserved
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RecapReadyNotificationID builds the deterministic lock id for a recap-ready
// notification. At most one record per (period, user, recap) can ever exist.
func RecapReadyNotificationID(kind PeriodKind, userID, recapID string) string {
	return fmt.Sprintf("recap_ready_%s_%s_%s", kind, userID, recapID)
}
