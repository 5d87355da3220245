package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultAppName = "dagord"

// Paths holds the resolved config file location and the data directory,
// including the database file kept inside it.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the application directory name. DevMode appends a "-dev"
// suffix so development state never mixes with a real install.
type Options struct {
	AppName string
	DevMode bool
}

// dirName normalizes the app name and applies the dev suffix.
func (o Options) dirName() string {
	name := strings.TrimSpace(o.AppName)
	if name == "" {
		name = defaultAppName
	}
	if o.DevMode {
		name += "-dev"
	}
	return name
}

// DefaultPaths resolves paths for the standard application name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: defaultAppName})
}

// DefaultPathsWithOptions resolves paths from the host environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir, err := hostDataDir(configDir)
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":   os.Getenv("XDG_DATA_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"LOCALAPPDATA":    os.Getenv("LOCALAPPDATA"),
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, opts.dirName())
}

// hostDataDir picks the platform data root before env overrides apply. On
// most platforms data lives next to config; linux separates the two and
// windows may point LOCALAPPDATA elsewhere.
func hostDataDir(configDir string) (string, error) {
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("user home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			return v, nil
		}
	}
	return configDir, nil
}

// PathsFor computes paths from explicit inputs, keeping the per-platform
// override rules free of process state.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	var configBase, dataBase string
	switch goos {
	case "linux":
		configBase = override(env, "XDG_CONFIG_HOME", userConfigDir)
		dataBase = override(env, "XDG_DATA_HOME", userDataDir)
	case "windows":
		configBase = override(env, "APPDATA", userConfigDir)
		dataBase = override(env, "LOCALAPPDATA", userDataDir)
	default:
		// darwin and the rest trust the stdlib user dirs.
		configBase = userConfigDir
		dataBase = userDataDir
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
	}, nil
}

func override(env map[string]string, key, fallback string) string {
	if v := env[key]; v != "" {
		return v
	}
	return fallback
}
