package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeInt    KeyType = "int"
	KeyTypeBool   KeyType = "bool"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type (string, int, bool).
	Type KeyType
	// Desc is a human-readable description shown in `rack config list`.
	Desc string
	// DefaultStr is the string representation of the default value.
	DefaultStr string

	get   func(*Config) string
	set   func(cfg *Config, value string) error
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on type mismatch.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.name": {
		Type:       KeyTypeString,
		Desc:       "Display name",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.Name },
		set:        func(cfg *Config, v string) error { cfg.User.Name = v; return nil },
		unset:      func(cfg *Config) { cfg.User.Name = "" },
	},
	"log.level": {
		Type:       KeyTypeString,
		Desc:       "Log level (debug, info, warn, error)",
		DefaultStr: "info",
		get:        func(cfg *Config) string { return cfg.Log.Level },
		set: func(cfg *Config, v string) error {
			if _, ok := ParseLevel(v); !ok {
				return fmt.Errorf("invalid value %q for log.level: use debug, info, warn or error", v)
			}
			cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
			return nil
		},
		unset: func(cfg *Config) { cfg.Log.Level = "info" },
	},
	"log.format": {
		Type:       KeyTypeString,
		Desc:       "Log format (json, text)",
		DefaultStr: "json",
		get:        func(cfg *Config) string { return cfg.Log.Format },
		set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "json" && v != "text" {
				return fmt.Errorf("invalid value %q for log.format: use json or text", v)
			}
			cfg.Log.Format = v
			return nil
		},
		unset: func(cfg *Config) { cfg.Log.Format = "json" },
	},
	"backup.enabled": {
		Type:       KeyTypeBool,
		Desc:       "Write a rolling snapshot backup after changes",
		DefaultStr: "true",
		get:        func(cfg *Config) string { return strconv.FormatBool(cfg.Backup.IsEnabled()) },
		set: func(cfg *Config, v string) error {
			b, err := ParseBoolValue(v)
			if err != nil {
				return fmt.Errorf("invalid value %q for backup.enabled: %w", v, err)
			}
			cfg.Backup.Enabled = BoolPtr(b)
			return nil
		},
		unset: func(cfg *Config) { cfg.Backup.Enabled = BoolPtr(true) },
	},
	"backup.keep": {
		Type:       KeyTypeInt,
		Desc:       "Number of rolling backups to keep",
		DefaultStr: strconv.Itoa(DefaultBackupKeep),
		get:        func(cfg *Config) string { return strconv.Itoa(cfg.Backup.KeepOrDefault()) },
		set:        positiveInt("backup.keep", func(cfg *Config, n int) { cfg.Backup.Keep = n }),
		unset:      func(cfg *Config) { cfg.Backup.Keep = DefaultBackupKeep },
	},
	"backup.debounce_seconds": {
		Type:       KeyTypeInt,
		Desc:       "Quiet period before a backup is written (seconds)",
		DefaultStr: strconv.Itoa(DefaultBackupDebounce),
		get:        func(cfg *Config) string { return strconv.Itoa(cfg.Backup.DebounceOrDefault()) },
		set:        positiveInt("backup.debounce_seconds", func(cfg *Config, n int) { cfg.Backup.DebounceSeconds = n }),
		unset:      func(cfg *Config) { cfg.Backup.DebounceSeconds = DefaultBackupDebounce },
	},
	"backup.dir": {
		Type:       KeyTypeString,
		Desc:       "Backup directory (defaults to the data dir)",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.Backup.Dir },
		set:        func(cfg *Config, v string) error { cfg.Backup.Dir = v; return nil },
		unset:      func(cfg *Config) { cfg.Backup.Dir = "" },
	},
	"backup.passphrase_env": {
		Type:       KeyTypeString,
		Desc:       "Env var holding the backup encryption passphrase",
		DefaultStr: DefaultPassphraseEnv,
		get:        func(cfg *Config) string { return cfg.Backup.PassphraseEnv },
		set:        func(cfg *Config, v string) error { cfg.Backup.PassphraseEnv = v; return nil },
		unset:      func(cfg *Config) { cfg.Backup.PassphraseEnv = DefaultPassphraseEnv },
	},
}

func positiveInt(name string, apply func(*Config, int)) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid value %q for %s: expected an integer", v, name)
		}
		if n <= 0 {
			return fmt.Errorf("invalid value %d for %s: must be positive", n, name)
		}
		apply(cfg, n)
		return nil
	}
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}

// ParseLevel maps a log level name to its slog level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ParseBoolValue accepts common boolean string representations.
// Valid truthy values: true, 1, yes, on.
// Valid falsy values: false, 0, no, off.
func ParseBoolValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q (use one of: true/false, 1/0, yes/no, on/off)", s)
	}
}
