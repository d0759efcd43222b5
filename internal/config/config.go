package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the top-level rack configuration. Planner settings
// (capacity, slack, toggles) live in the database, not here.
type Config struct {
	User   UserConfig   `toml:"user"`
	Log    LogConfig    `toml:"log"`
	Backup BackupConfig `toml:"backup"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

// LogConfig controls diagnostic logging to the state dir.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, text
}

// BackupConfig controls the debounced automatic snapshot backup.
type BackupConfig struct {
	// Enabled defaults to true when not set in config.
	Enabled         *bool  `toml:"enabled,omitempty"`
	Keep            int    `toml:"keep"`
	DebounceSeconds int    `toml:"debounce_seconds"`
	Dir             string `toml:"dir,omitempty"` // defaults to <data>/backups
	// PassphraseEnv names an env var holding an age passphrase. When the
	// variable is set, backups are encrypted.
	PassphraseEnv string `toml:"passphrase_env,omitempty"`
}

// Defaults for the backup section.
const (
	DefaultBackupKeep     = 3
	DefaultBackupDebounce = 30
	DefaultPassphraseEnv  = "RACK_BACKUP_PASSPHRASE"
)

// IsEnabled returns whether automatic backups are on.
func (b BackupConfig) IsEnabled() bool {
	if b.Enabled == nil {
		return true
	}
	return *b.Enabled
}

// KeepOrDefault returns the number of rolling backups to retain.
func (b BackupConfig) KeepOrDefault() int {
	if b.Keep <= 0 {
		return DefaultBackupKeep
	}
	return b.Keep
}

// DebounceOrDefault returns the quiet period before a backup is written, in seconds.
func (b BackupConfig) DebounceOrDefault() int {
	if b.DebounceSeconds <= 0 {
		return DefaultBackupDebounce
	}
	return b.DebounceSeconds
}

// DirOr returns the configured backup dir, or fallback.
func (b BackupConfig) DirOr(fallback string) string {
	if b.Dir == "" {
		return fallback
	}
	return b.Dir
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
	BackupDir  string
	LogFile    string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	rackConfig := filepath.Join(configDir, "rack")
	rackData := filepath.Join(dataDir, "rack")
	rackState := filepath.Join(stateDir, "rack")

	return Paths{
		ConfigDir:  rackConfig,
		DataDir:    rackData,
		CacheDir:   filepath.Join(cacheDir, "rack"),
		StateDir:   rackState,
		ConfigFile: filepath.Join(rackConfig, "config.toml"),
		DBFile:     filepath.Join(rackData, "rack.db"),
		BackupDir:  filepath.Join(rackData, "backups"),
		LogFile:    filepath.Join(rackState, "rack.log"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if rack has been set up.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(v bool) *bool {
	return &v
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Backup: BackupConfig{
			Enabled:         BoolPtr(true),
			Keep:            DefaultBackupKeep,
			DebounceSeconds: DefaultBackupDebounce,
			PassphraseEnv:   DefaultPassphraseEnv,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
