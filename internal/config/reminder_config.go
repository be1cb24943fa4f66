package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ReminderConfig is the reminder engine's configuration: when the daily
// trigger fires, in which timezone, and how reminder emails leave the
// system.
type ReminderConfig struct {
	Trigger TriggerConfig `toml:"trigger"`
	SMTP    SMTPConfig    `toml:"smtp"`
}

// TriggerConfig holds the daily firing time as "HH:MM" wall-clock in a
// named civil timezone. Both are deployment constants, not per-user
// settings.
type TriggerConfig struct {
	At       string `toml:"at"`
	Timezone string `toml:"timezone"`
}

// SMTPConfig contains the outbound email transport settings. An empty
// Host means no transport is configured and deliveries are logged only.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

const (
	defaultTriggerAt = "09:00"
	defaultTimezone  = "Asia/Kolkata"
	defaultSMTPPort  = 587
)

// DefaultReminderConfig returns the reference deployment settings.
func DefaultReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		Trigger: TriggerConfig{At: defaultTriggerAt, Timezone: defaultTimezone},
		SMTP:    SMTPConfig{Port: defaultSMTPPort},
	}
}

// LoadReminderConfig loads configuration from a TOML file. Fields left
// blank in the file keep their defaults. An empty filename yields the
// defaults outright.
func LoadReminderConfig(filename string) (*ReminderConfig, error) {
	config := DefaultReminderConfig()
	if filename == "" {
		return config, nil
	}

	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if config.Trigger.At == "" {
		config.Trigger.At = defaultTriggerAt
	}
	if config.Trigger.Timezone == "" {
		config.Trigger.Timezone = defaultTimezone
	}
	if config.SMTP.Port == 0 {
		config.SMTP.Port = defaultSMTPPort
	}

	if _, _, err := config.Trigger.Clock(); err != nil {
		return nil, err
	}
	if _, err := config.Trigger.Location(); err != nil {
		return nil, err
	}
	return config, nil
}

// Clock parses the trigger time into hour and minute.
func (t TriggerConfig) Clock() (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", t.At)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid trigger time %q (want HH:MM): %w", t.At, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// Location resolves the configured timezone.
func (t TriggerConfig) Location() (*time.Location, error) {
	location, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", t.Timezone, err)
	}
	return location, nil
}
