// Package rconfig loads resolver-wide configuration: the git executable
// to invoke, the temp-directory root for working copies, the ordered
// list of registry manifest filenames to try, and timeouts.
package rconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds resolver-wide settings.
type Config struct {
	GitExe          string        `yaml:"git_exe"`
	TempRoot        string        `yaml:"temp_root"`
	Registries      []string      `yaml:"registries"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	ArchiveCacheTTL time.Duration `yaml:"archive_cache_ttl"`
}

// Default returns a Config with the resolver's built-in defaults.
func Default() Config {
	return Config{
		GitExe:          "git",
		TempRoot:        filepath.Join(os.TempDir(), "git-resolve"),
		Registries:      []string{"package.json"},
		DialTimeout:     30 * time.Second,
		ArchiveCacheTTL: 0,
	}
}

// Load reads a YAML config file at path, falling back to Default() for
// a missing file and for any zero-valued field left unset in the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if fromFile.GitExe != "" {
		cfg.GitExe = fromFile.GitExe
	}
	if fromFile.TempRoot != "" {
		cfg.TempRoot = fromFile.TempRoot
	}
	if len(fromFile.Registries) > 0 {
		cfg.Registries = fromFile.Registries
	}
	if fromFile.DialTimeout > 0 {
		cfg.DialTimeout = fromFile.DialTimeout
	}
	if fromFile.ArchiveCacheTTL > 0 {
		cfg.ArchiveCacheTTL = fromFile.ArchiveCacheTTL
	}

	return cfg, nil
}

// WorkDirFor returns the temp working directory named by hash under
// TempRoot. The caller passes a content address of the canonical
// repository URL (gitsession uses its sha256 hex), so cwd is a
// deterministic function of the repository string.
func (c Config) WorkDirFor(hash string) string {
	return filepath.Join(c.TempRoot, hash)
}
