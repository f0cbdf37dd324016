package domain

import "time"

// Child is a child profile owned by a user.
type Child struct {
	ChildID   string    `json:"id" dynamodbav:"child_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	BirthDate time.Time `json:"birth_date" dynamodbav:"birth_date"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateChildRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"required"` // expected format: YYYY-MM-DD
}

// ChildContext is what the recap pipeline needs to know about a child:
// display name and age string as of now. Lookup failures fall back to a
// generic context instead of failing the pipeline.
type ChildContext struct {
	Name      string `json:"name"`
	AgeString string `json:"age_string"`
}
