package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {

	t.Run("full file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
[tracking]
categories = ["APEX LEGENDS", "VALORANT"]
store_file = "seen.json"

[away]
role_name = "AFK"
leave_channel = "vacations"
exempt_keyword = "!away"
threshold_days = 14
sweep_interval_minutes = 30

[log]
level = "debug"
file = "bot.log"
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"APEX LEGENDS", "VALORANT"}, cfg.Tracking.Categories)
		assert.Equal(t, "seen.json", cfg.Tracking.StoreFile)
		assert.Equal(t, "AFK", cfg.Away.RoleName)
		assert.Equal(t, "vacations", cfg.Away.LeaveChannel)
		assert.Equal(t, "!away", cfg.Away.ExemptKeyword)
		assert.Equal(t, 14, cfg.Away.ThresholdDays)
		assert.Equal(t, 30, cfg.Away.SweepIntervalMinutes)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("defaults fill the gaps", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
[tracking]
categories = ["APEX LEGENDS"]
`))
		require.NoError(t, err)
		assert.Equal(t, "lastActivity.json", cfg.Tracking.StoreFile)
		assert.Equal(t, "MIA", cfg.Away.RoleName)
		assert.Equal(t, "on-leave-notice", cfg.Away.LeaveChannel)
		assert.Equal(t, "!onleave", cfg.Away.ExemptKeyword)
		assert.Equal(t, 7, cfg.Away.ThresholdDays)
		assert.Equal(t, 60, cfg.Away.SweepIntervalMinutes)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("missing categories is an error", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[away]
role_name = "MIA"
`))
		assert.Error(t, err)
	})

	t.Run("non-positive threshold is an error", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
[tracking]
categories = ["APEX LEGENDS"]

[away]
threshold_days = 0
`))
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestDurations(t *testing.T) {
	away := AwayConfig{ThresholdDays: 7, SweepIntervalMinutes: 90}
	assert.Equal(t, 7*24*time.Hour, away.Threshold())
	assert.Equal(t, 90*time.Minute, away.SweepInterval())
}
