package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsForPlatformRules verifies env override and fallback behavior per
// platform.
func TestPathsForPlatformRules(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configDir  string
		dataDir    string
		wantConfig string
		wantDB     string
	}{
		{
			name:       "linux xdg overrides",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configDir:  "/fallback/config",
			dataDir:    "/fallback/data",
			wantConfig: filepath.Join("/xdg/config", "dagord", "config.toml"),
			wantDB:     filepath.Join("/xdg/data", "dagord", "dagord.db"),
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			configDir:  "/home/me/.config",
			dataDir:    "/home/me/.local/share",
			wantConfig: filepath.Join("/home/me/.config", "dagord", "config.toml"),
			wantDB:     filepath.Join("/home/me/.local/share", "dagord", "dagord.db"),
		},
		{
			name:       "windows appdata split",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`, "LOCALAPPDATA": `C:\Users\me\AppData\Local`},
			configDir:  `C:\fallback\config`,
			dataDir:    `C:\fallback\data`,
			wantConfig: filepath.Join(`C:\Users\me\AppData\Roaming`, "dagord", "config.toml"),
			wantDB:     filepath.Join(`C:\Users\me\AppData\Local`, "dagord", "dagord.db"),
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			configDir:  "/Users/me/Library/Application Support",
			dataDir:    "/Users/me/Library/Application Support",
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "dagord", "config.toml"),
			wantDB:     filepath.Join("/Users/me/Library/Application Support", "dagord", "dagord.db"),
		},
		{
			name:       "unknown platform uses given dirs",
			goos:       "freebsd",
			env:        map[string]string{},
			configDir:  "/cfg",
			dataDir:    "/data",
			wantConfig: filepath.Join("/cfg", "dagord", "config.toml"),
			wantDB:     filepath.Join("/data", "dagord", "dagord.db"),
		},
	}
	for _, tc := range cases {
		p, err := PathsFor(tc.goos, tc.env, tc.configDir, tc.dataDir, "dagord")
		if err != nil {
			t.Fatalf("%s: PathsFor() error = %v", tc.name, err)
		}
		if p.ConfigPath != tc.wantConfig {
			t.Fatalf("%s: ConfigPath = %q, want %q", tc.name, p.ConfigPath, tc.wantConfig)
		}
		if p.DBPath != tc.wantDB {
			t.Fatalf("%s: DBPath = %q, want %q", tc.name, p.DBPath, tc.wantDB)
		}
		if p.DataDir != filepath.Dir(p.DBPath) {
			t.Fatalf("%s: DataDir = %q, db at %q", tc.name, p.DataDir, p.DBPath)
		}
	}
}

// TestPathsForRejectsEmptyInputs verifies base dir and app name validation.
func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "dagord"); err == nil {
		t.Fatal("expected error for empty config dir")
	}
	if _, err := PathsFor("darwin", nil, "/tmp/cfg", "/tmp/data", "  "); err == nil {
		t.Fatal("expected error for blank app name")
	}
}

// TestOptionsDirName verifies app name normalization and the dev suffix.
func TestOptionsDirName(t *testing.T) {
	if got := (Options{}).dirName(); got != "dagord" {
		t.Fatalf("dirName() = %q, want dagord", got)
	}
	if got := (Options{AppName: "  planner "}).dirName(); got != "planner" {
		t.Fatalf("dirName() = %q, want planner", got)
	}
	if got := (Options{AppName: "dagord", DevMode: true}).dirName(); got != "dagord-dev" {
		t.Fatalf("dirName() = %q, want dagord-dev", got)
	}
}

// TestDefaultPathsSmoke verifies resolution against the real host environment.
func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

// TestDefaultPathsWithOptionsDevMode verifies the dev suffix lands in every
// resolved path.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "dagord", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "dagord-dev" {
		t.Fatalf("expected dev config dir, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "dagord-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
