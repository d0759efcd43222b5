package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPaths(t *testing.T) {
	paths := GetPaths()

	if paths.ConfigDir == "" {
		t.Fatal("ConfigDir should not be empty")
	}
	if paths.DataDir == "" {
		t.Fatal("DataDir should not be empty")
	}
	if paths.ConfigFile == "" {
		t.Fatal("ConfigFile should not be empty")
	}
	if paths.DBFile == "" {
		t.Fatal("DBFile should not be empty")
	}
}

func TestGetPathsRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/testxdg/config")
	t.Setenv("XDG_DATA_HOME", "/tmp/testxdg/data")
	t.Setenv("XDG_STATE_HOME", "/tmp/testxdg/state")

	paths := GetPaths()

	if paths.ConfigDir != "/tmp/testxdg/config/rack" {
		t.Fatalf("expected /tmp/testxdg/config/rack, got %s", paths.ConfigDir)
	}
	if paths.DataDir != "/tmp/testxdg/data/rack" {
		t.Fatalf("expected /tmp/testxdg/data/rack, got %s", paths.DataDir)
	}
	if paths.DBFile != "/tmp/testxdg/data/rack/rack.db" {
		t.Fatalf("unexpected DBFile %s", paths.DBFile)
	}
	if paths.BackupDir != "/tmp/testxdg/data/rack/backups" {
		t.Fatalf("unexpected BackupDir %s", paths.BackupDir)
	}
	if paths.LogFile != "/tmp/testxdg/state/rack/rack.log" {
		t.Fatalf("unexpected LogFile %s", paths.LogFile)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Log.Level != "info" {
		t.Fatalf("expected log level 'info', got %q", cfg.Log.Level)
	}
	if !cfg.Backup.IsEnabled() {
		t.Fatal("backups should be enabled by default")
	}
	if cfg.Backup.KeepOrDefault() != 3 {
		t.Fatalf("expected keep 3, got %d", cfg.Backup.KeepOrDefault())
	}
	if cfg.Backup.DebounceOrDefault() != 30 {
		t.Fatalf("expected debounce 30, got %d", cfg.Backup.DebounceOrDefault())
	}
}

func TestBackupConfigZeroValueFallsBack(t *testing.T) {
	var b BackupConfig
	if !b.IsEnabled() {
		t.Error("nil Enabled should mean enabled")
	}
	if b.KeepOrDefault() != DefaultBackupKeep {
		t.Errorf("KeepOrDefault = %d", b.KeepOrDefault())
	}
	if got := b.DirOr("/x"); got != "/x" {
		t.Errorf("DirOr = %q, want /x", got)
	}
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")

	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.CacheDir, paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("dir %s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))

	if Initialized() {
		t.Fatal("fresh dir should not be initialized")
	}

	cfg := defaultConfig()
	cfg.User.Name = "Sam"
	cfg.Backup.Keep = 5
	cfg.Backup.Enabled = BoolPtr(false)
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Initialized() {
		t.Fatal("expected Initialized after Save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.User.Name != "Sam" {
		t.Errorf("User.Name = %q", loaded.User.Name)
	}
	if loaded.Backup.Keep != 5 {
		t.Errorf("Backup.Keep = %d", loaded.Backup.Keep)
	}
	if loaded.Backup.IsEnabled() {
		t.Error("Backup should be disabled")
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}
