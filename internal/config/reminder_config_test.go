package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reminder.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadReminderConfig_EmptyFilenameYieldsDefaults(t *testing.T) {
	cfg, err := LoadReminderConfig("")
	require.NoError(t, err)

	assert.Equal(t, "09:00", cfg.Trigger.At)
	assert.Equal(t, "Asia/Kolkata", cfg.Trigger.Timezone)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadReminderConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[trigger]
at = "07:30"
timezone = "Europe/Berlin"

[smtp]
host = "smtp.example.com"
port = 465
username = "mailer"
password = "secret"
from = "reminders@example.com"
`)

	cfg, err := LoadReminderConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "07:30", cfg.Trigger.At)
	assert.Equal(t, "Europe/Berlin", cfg.Trigger.Timezone)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)

	hour, minute, err := cfg.Trigger.Clock()
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 30, minute)
}

func TestLoadReminderConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[smtp]
host = "smtp.example.com"
`)

	cfg, err := LoadReminderConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "09:00", cfg.Trigger.At)
	assert.Equal(t, "Asia/Kolkata", cfg.Trigger.Timezone)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadReminderConfig_BadTriggerTimeRejected(t *testing.T) {
	path := writeConfig(t, `
[trigger]
at = "9 o'clock"
`)

	_, err := LoadReminderConfig(path)
	assert.Error(t, err)
}

func TestLoadReminderConfig_BadTimezoneRejected(t *testing.T) {
	path := writeConfig(t, `
[trigger]
timezone = "Mars/Olympus"
`)

	_, err := LoadReminderConfig(path)
	assert.Error(t, err)
}

func TestLoadReminderConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadReminderConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
