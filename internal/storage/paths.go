package storage

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	homeDirName     = ".dash"
	tasksDirName    = "tasks"
	sessionsDir     = "sessions"
	configName      = "config.yaml"
	envHomeOverride = "DASH_HOME"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Layout describes where dash keeps its files under a home directory.
type Layout struct {
	Home string
}

// DefaultHome returns $DASH_HOME, or ~/.dash when unset.
func DefaultHome() (string, error) {
	if h := os.Getenv(envHomeOverride); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeDirName), nil
}

// TasksDir is the directory of the file-backed local store.
func (l Layout) TasksDir() string {
	return filepath.Join(l.Home, tasksDirName)
}

// ConfigFile is the optional YAML configuration file.
func (l Layout) ConfigFile() string {
	return filepath.Join(l.Home, configName)
}

// SessionDir is the directory holding the credential for one API endpoint, so
// that logging into one backend never leaks a token to another.
func (l Layout) SessionDir(apiURL string) string {
	key := apiURL
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		key = u.Host + u.Path
	}
	return filepath.Join(l.Home, sessionsDir, SanitizePath(key))
}

// SanitizePath converts a path or address to a safe directory name.
// "localhost:8000/api" -> "localhost-8000-api"
func SanitizePath(path string) string {
	// Remove leading slash
	result := strings.TrimPrefix(path, "/")

	// Replace non-alphanumeric chars with dash
	result = nonAlnum.ReplaceAllString(result, "-")

	// Trim leading/trailing dashes
	result = strings.Trim(result, "-")

	return result
}
