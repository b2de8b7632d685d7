package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths are the well-known locations relative to the executable.
type Paths struct {
	ExecutableDir  string
	LogsDir        string
	DictionaryFile string
	ConfigFile     string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the application paths under dir.
func NewPaths(dir string) *Paths {
	return &Paths{
		ExecutableDir:  dir,
		LogsDir:        filepath.Join(dir, DefaultLogsDir),
		DictionaryFile: filepath.Join(dir, DefaultDictionaryFile),
		ConfigFile:     filepath.Join(dir, ConfigFileName),
	}
}

// Resolve joins a relative path onto the executable directory.
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExecutableDir, path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.String("executable", p.ExecutableDir),
		slog.String("logs", p.LogsDir),
		slog.Group("files",
			slog.String("dictionary", p.DictionaryFile),
			slog.Bool("dictionary_exists", FileExists(p.DictionaryFile)),
			slog.String("config", p.ConfigFile),
		))
}
