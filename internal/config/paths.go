package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetExecutableDir returns the directory of the running binary with
// symlinks resolved.
func GetExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolveDir makes dir absolute. A relative dir is taken from the working
// directory when it exists there, otherwise from the executable directory.
func ResolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	if abs, err := filepath.Abs(dir); err == nil && FileExists(abs) {
		return abs
	}
	if exeDir, err := GetExecutableDir(); err == nil {
		candidate := filepath.Join(exeDir, dir)
		if FileExists(candidate) {
			return candidate
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

// DataDir returns the resolved data directory
func (c *Config) DataDir() string {
	return ResolveDir(c.Data.Dir)
}

// FileExists checks if a file or directory exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
