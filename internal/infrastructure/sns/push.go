package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/yonasKu/sproutbook-api/internal/config"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// PushResult is the per-device outcome of a push send. Unregistered marks
// endpoints the gateway no longer knows about; the caller deletes those
// registrations.
type PushResult struct {
	DeviceID     string
	Err          error
	Unregistered bool
}

// PushSender delivers a notification to a set of registered devices.
type PushSender interface {
	Push(ctx context.Context, devices []domain.Device, title, body string, data map[string]string) []PushResult
}

// Gateway is the full push-gateway surface: sending plus endpoint
// registration for new device tokens.
type Gateway interface {
	PushSender
	CreateEndpoint(ctx context.Context, platform, token string) (string, error)
}

type sender struct {
	client    *sns.Client
	iosAppARN string
	fcmAppARN string
}

func NewSender(cfg *config.Config) (Gateway, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{
		client:    sns.NewFromConfig(awsCfg),
		iosAppARN: cfg.SNSAppARNIOS,
		fcmAppARN: cfg.SNSAppARNAndroid,
	}, nil
}

// CreateEndpoint registers a device token under the platform application and
// returns the endpoint ARN pushes will target.
func (s *sender) CreateEndpoint(ctx context.Context, platform, token string) (string, error) {
	appARN := s.fcmAppARN
	if platform == "ios" {
		appARN = s.iosAppARN
	}
	if appARN == "" {
		return "", fmt.Errorf("no platform application configured for %q", platform)
	}
	out, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(appARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("create platform endpoint: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}

// Push publishes the notification to each device's platform endpoint and
// reports per-device outcomes. A failed device never aborts the rest.
func (s *sender) Push(ctx context.Context, devices []domain.Device, title, body string, data map[string]string) []PushResult {
	payload, err := buildPayload(title, body, data)
	results := make([]PushResult, 0, len(devices))
	if err != nil {
		for _, d := range devices {
			results = append(results, PushResult{DeviceID: d.DeviceID, Err: err})
		}
		return results
	}
	for _, d := range devices {
		_, pubErr := s.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(d.EndpointARN),
			Message:          aws.String(payload),
			MessageStructure: aws.String("json"),
		})
		results = append(results, PushResult{
			DeviceID:     d.DeviceID,
			Err:          pubErr,
			Unregistered: isUnregistered(pubErr),
		})
	}
	return results
}

// buildPayload renders the SNS multi-protocol JSON message. The same
// title/body pair goes to both APNS and FCM alongside the structured data.
func buildPayload(title, body string, data map[string]string) (string, error) {
	notif := map[string]interface{}{
		"title": title,
		"body":  body,
		"data":  data,
	}
	apns, err := json.Marshal(map[string]interface{}{
		"aps":  map[string]interface{}{"alert": map[string]string{"title": title, "body": body}},
		"data": data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal apns payload: %w", err)
	}
	gcm, err := json.Marshal(map[string]interface{}{"notification": notif, "data": data})
	if err != nil {
		return "", fmt.Errorf("marshal fcm payload: %w", err)
	}
	outer, err := json.Marshal(map[string]string{
		"default": body,
		"APNS":    string(apns),
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns payload: %w", err)
	}
	return string(outer), nil
}

func isUnregistered(err error) bool {
	if err == nil {
		return false
	}
	var disabled *types.EndpointDisabledException
	var notFound *types.NotFoundException
	return errors.As(err, &disabled) || errors.As(err, &notFound)
}
