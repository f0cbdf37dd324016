package domain

import "time"

// User is the owner of journal entries and child profiles. Auth lives
// elsewhere; this service only needs identity and the enable flag for
// batch enumeration.
type User struct {
	UserID    string     `json:"id" dynamodbav:"user_id"`
	Email     string     `json:"email" dynamodbav:"email"`
	FirstName string     `json:"first_name" dynamodbav:"first_name"`
	LastName  string     `json:"last_name" dynamodbav:"last_name"`
	Enable    bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated" dynamodbav:"updated_at"`
}
