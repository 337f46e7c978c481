package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_CONNECTION_STRING", "   ")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/vouchy")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, 5*time.Minute, cfg.SignedUploadTTL)
	assert.Equal(t, 10, cfg.UploadRateLimit)
	assert.Equal(t, 10*time.Minute, cfg.UploadRateWindow)
	assert.Equal(t, []string{"testimonials", "avatars"}, cfg.SignedUploadBuckets)
	assert.Equal(t, []string{"videos", "avatars", "logos", "thumbnails"}, cfg.R2AllowedFolders)
	assert.Equal(t, 1, cfg.TrustedProxyHops)
	assert.False(t, cfg.R2Configured())
	assert.False(t, cfg.AIConfigured())
	assert.False(t, cfg.PubSubConfigured())
}

func TestLoadProductPlans(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/vouchy")
	t.Setenv("DODO_PRODUCT_PLANS", "pdt_a:pro,pdt_b:agency")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pdt_a": "pro", "pdt_b": "agency"}, cfg.DodoProductPlans)
}
