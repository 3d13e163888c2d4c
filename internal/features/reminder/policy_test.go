package reminder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 2*time.Hour, p.IntervalFor(models.UrgencyCritical))
	assert.Equal(t, 4*time.Hour, p.IntervalFor(models.UrgencyHigh))
	assert.Equal(t, 12*time.Hour, p.IntervalFor(models.UrgencyMedium))
	assert.Equal(t, 12*time.Hour, p.IntervalFor("NORMAL"))
	assert.Equal(t, 12*time.Hour, p.IntervalFor("normal"))
	assert.Equal(t, 24*time.Hour, p.IntervalFor(models.UrgencyLow))
	assert.Equal(t, 24*time.Hour, p.IntervalFor("SOMEDAY"))
	assert.Equal(t, 48*time.Hour, p.EscalateAfter)
	assert.NoError(t, p.Validate())
}

func TestLoadPolicyOverlaysDefaults(t *testing.T) {
	path := writePolicy(t, `
intervals:
  critical: 1h
  HIGH: 90m
escalate_after: 72h
`)
	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, p.IntervalFor(models.UrgencyCritical))
	assert.Equal(t, 90*time.Minute, p.IntervalFor(models.UrgencyHigh))
	assert.Equal(t, 12*time.Hour, p.IntervalFor(models.UrgencyMedium))
	assert.Equal(t, 24*time.Hour, p.DefaultInterval)
	assert.Equal(t, 72*time.Hour, p.EscalateAfter)
}

func TestLoadPolicyRejectsInvalid(t *testing.T) {
	_, err := LoadPolicy(writePolicy(t, "intervals:\n  LOW: -1h\n"))
	assert.Error(t, err)

	_, err = LoadPolicy(writePolicy(t, "escalate_after: [1, 2]\n"))
	assert.Error(t, err)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy().EscalateAfter, p.EscalateAfter)

	p, err = NewPolicy(&config.Config{ReminderPolicyFile: writePolicy(t, "default_interval: 36h\n")})
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, p.IntervalFor("SOMEDAY"))
}
