package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesSeverityField(t *testing.T) {
	t.Setenv("ENV", "production")
	l := New()
	assert.Equal(t, "severity", zerolog.LevelFieldName)
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewDevelopmentIsVerbose(t *testing.T) {
	t.Setenv("ENV", "development")
	l := New()
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
}

func TestLogFileKeptInDevelopment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vouchy.log")
	t.Setenv("ENV", "development")
	t.Setenv("LOG_FILE", path)

	l := New()
	l.Info().Str("space_id", "space-1").Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"space_id":"space-1"`)
	assert.Contains(t, string(data), `"severity":"info"`)
}

func TestPrometheusHookCountsLevels(t *testing.T) {
	t.Setenv("ENV", "production")
	l := New()
	before := testutil.ToFloat64(counter.WithLabelValues("warn"))
	l.Warn().Msg("hook test")
	assert.Equal(t, before+1, testutil.ToFloat64(counter.WithLabelValues("warn")))
}
