package domain

import "time"

// Device is a push registration: the SNS platform endpoint for one of a
// user's devices. Stale endpoints are deleted when the gateway reports them
// no longer registered.
type Device struct {
	DeviceID    string    `json:"id" dynamodbav:"device_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Token       string    `json:"token" dynamodbav:"token"`
	EndpointARN string    `json:"endpoint_arn" dynamodbav:"endpoint_arn"`
	Platform    string    `json:"platform" dynamodbav:"platform"` // "ios" | "android"
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterDeviceRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
}
