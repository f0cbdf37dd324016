package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName     string
	SNSRegion        string
	SNSAppARNIOS     string
	SNSAppARNAndroid string

	GenAIProject  string
	GenAILocation string
	GenAIModel    string

	// EntryQueryTimeout bounds the aggregation query; on expiry the
	// aggregator degrades to an empty result instead of failing the pair.
	EntryQueryTimeout time.Duration
	EntryQueryMax     int

	// Batch fan-out controls.
	BatchPageSize    int
	BatchWorkerPool  int
	BatchPairTimeout time.Duration

	SchedulerEnabled bool
	SchedulerHourUTC int

	MediaURLTTL    time.Duration
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Children      string
	Entries       string
	Recaps        string
	Notifications string
	Devices       string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Children:      getEnv("DYNAMO_TABLE_CHILDREN", "children"),
			Entries:       getEnv("DYNAMO_TABLE_ENTRIES", "journal_entries"),
			Recaps:        getEnv("DYNAMO_TABLE_RECAPS", "recaps"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "devices"),
		},
		S3BucketName:     getEnv("S3_BUCKET_NAME", "sproutbook-media"),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSAppARNIOS:     getEnv("SNS_APP_ARN_IOS", ""),
		SNSAppARNAndroid: getEnv("SNS_APP_ARN_ANDROID", ""),

		GenAIProject:  getEnv("GENAI_PROJECT", ""),
		GenAILocation: getEnv("GENAI_LOCATION", "us-central1"),
		GenAIModel:    getEnv("GENAI_MODEL", "gemini-2.5-flash"),

		EntryQueryTimeout: getEnvDuration("ENTRY_QUERY_TIMEOUT", 10*time.Second),
		EntryQueryMax:     getEnvInt("ENTRY_QUERY_MAX", 1000),

		BatchPageSize:    getEnvInt("BATCH_PAGE_SIZE", 100),
		BatchWorkerPool:  getEnvInt("BATCH_WORKER_POOL", 8),
		BatchPairTimeout: getEnvDuration("BATCH_PAIR_TIMEOUT", 30*time.Second),

		SchedulerEnabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
		SchedulerHourUTC: getEnvInt("SCHEDULER_HOUR_UTC", 6),

		MediaURLTTL:    getEnvDuration("MEDIA_URL_TTL", 24*time.Hour),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
