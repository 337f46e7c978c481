package config

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"production"`
	LogFile     string `envconfig:"LOG_FILE"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// Supabase project settings. Storage is reached through its S3 gateway.
	SupabaseURL         string   `envconfig:"SUPABASE_URL"`
	SupabaseS3URL       string   `envconfig:"SUPABASE_S3_URL"`
	SupabaseS3Region    string   `envconfig:"SUPABASE_S3_REGION" default:"us-east-1"`
	SupabaseS3AccessKey string   `envconfig:"SUPABASE_S3_ACCESS_KEY"`
	SupabaseS3SecretKey string   `envconfig:"SUPABASE_S3_SECRET_KEY"`
	JWTSecret           string   `envconfig:"SUPABASE_JWT_SECRET"`
	SignedUploadBuckets []string `envconfig:"SIGNED_UPLOAD_BUCKETS" default:"testimonials,avatars"`

	// Signed upload settings
	SignedUploadTTL  time.Duration `envconfig:"SIGNED_UPLOAD_TTL" default:"5m"`
	UploadRateLimit  int           `envconfig:"UPLOAD_RATE_LIMIT" default:"10"`
	UploadRateWindow time.Duration `envconfig:"UPLOAD_RATE_WINDOW" default:"10m"`
	RedisURL         string        `envconfig:"REDIS_URL"`
	// TrustedProxyHops is how many proxies in front of the service append to
	// X-Forwarded-For. Zero ignores forwarding headers.
	TrustedProxyHops int `envconfig:"TRUSTED_PROXY_HOPS" default:"1"`

	// Cloudflare R2 settings
	R2AccountID       string        `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string        `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string        `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Bucket          string        `envconfig:"R2_BUCKET"`
	R2PublicURL       string        `envconfig:"R2_PUBLIC_URL"`
	R2UploadTTL       time.Duration `envconfig:"R2_UPLOAD_TTL" default:"15m"`
	R2AllowedFolders  []string      `envconfig:"R2_ALLOWED_FOLDERS" default:"videos,avatars,logos,thumbnails"`

	// AI gateway settings (OpenAI-compatible chat completions)
	AIGatewayURL       string `envconfig:"AI_GATEWAY_URL"`
	AIGatewayAPIKey    string `envconfig:"AI_GATEWAY_API_KEY"`
	AIModel            string `envconfig:"AI_MODEL" default:"google/gemini-2.5-flash"`
	AIMonthlyLimitFree int    `envconfig:"AI_MONTHLY_LIMIT_FREE" default:"10"`
	AIMonthlyLimitPro  int    `envconfig:"AI_MONTHLY_LIMIT_PRO" default:"200"`

	// Dodo Payments webhook settings
	DodoWebhookSecret string            `envconfig:"DODO_WEBHOOK_SECRET"`
	DodoProductPlans  map[string]string `envconfig:"DODO_PRODUCT_PLANS"`

	// Pub/Sub settings for plan change events
	GCPProjectID    string `envconfig:"GCP_PROJECT_ID"`
	PubSubPlanTopic string `envconfig:"PUBSUB_PLAN_TOPIC"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DBConnectionString) == "" {
		return nil, errors.New("required key DB_CONNECTION_STRING is empty")
	}
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	cfg.R2PublicURL = strings.TrimRight(cfg.R2PublicURL, "/")
	return &cfg, nil
}

// SupabaseStorageConfigured reports whether signed uploads can be minted.
func (c *Config) SupabaseStorageConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseS3URL != "" && c.SupabaseS3AccessKey != "" && c.SupabaseS3SecretKey != ""
}

// R2Configured reports whether R2 presigned uploads can be minted.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2Bucket != ""
}

// AIConfigured reports whether the AI gateway can be called.
func (c *Config) AIConfigured() bool {
	return c.AIGatewayURL != "" && c.AIGatewayAPIKey != ""
}

// PubSubConfigured reports whether plan change events should be published.
func (c *Config) PubSubConfigured() bool {
	return c.GCPProjectID != "" && c.PubSubPlanTopic != ""
}
