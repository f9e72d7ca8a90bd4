// Package config handles loading and validating teire configuration
// from files, environment variables, and CLI flag overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// SyncedConfig holds options for the synced cleanup mode.
type SyncedConfig struct {
	// SkipRecentAuthorCommits excludes branches whose last
	// RecentCommitWindow commits include the current user as author.
	SkipRecentAuthorCommits bool `yaml:"skip_recent_author_commits"`
	RecentCommitWindow      int  `yaml:"recent_commit_window"`
}

// Config holds all teire configuration.
type Config struct {
	// TrunkCandidates are tried in order when origin/HEAD is not set.
	TrunkCandidates []string `yaml:"trunk_candidates"`
	// ProtectedBranches are never offered for deletion.
	ProtectedBranches []string `yaml:"protected_branches"`
	// ProtectedPrefixes exclude branches by name prefix (e.g. release/).
	ProtectedPrefixes []string     `yaml:"protected_prefixes"`
	Remote            string       `yaml:"remote"`
	GithubToken       string       `yaml:"github_token"`
	Synced            SyncedConfig `yaml:"synced"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		TrunkCandidates:   []string{"main", "master"},
		ProtectedBranches: []string{"main", "master", "develop"},
		ProtectedPrefixes: []string{"release/", "hotfix/"},
		Remote:            "origin",
		Synced: SyncedConfig{
			SkipRecentAuthorCommits: false,
			RecentCommitWindow:      10,
		},
	}
}

// Load reads configuration from the config file and environment variables.
// Values are layered: defaults < config file < environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if err := loadFile(&cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)

	if cfg.Remote == "" {
		return cfg, fmt.Errorf("remote must not be empty")
	}
	if cfg.Synced.RecentCommitWindow < 1 {
		return cfg, fmt.Errorf("synced.recent_commit_window must be at least 1, got %d",
			cfg.Synced.RecentCommitWindow)
	}
	return cfg, nil
}

// IsProtected reports whether branch matches the protected-name set or a
// protected prefix.
func (c Config) IsProtected(branch string) bool {
	for _, p := range c.ProtectedBranches {
		if branch == p {
			return true
		}
	}
	for _, prefix := range c.ProtectedPrefixes {
		if strings.HasPrefix(branch, prefix) {
			return true
		}
	}
	return false
}

// configPath returns the path to the config file.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "teire", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "teire", "config.yaml")
}

func loadFile(cfg *Config) error {
	path := filepath.Clean(configPath())
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no config file is fine
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TEIRE_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("TEIRE_PROTECTED_BRANCHES"); v != "" {
		cfg.ProtectedBranches = splitList(v)
	}
	if v := os.Getenv("TEIRE_PROTECTED_PREFIXES"); v != "" {
		cfg.ProtectedPrefixes = splitList(v)
	}
	if v := os.Getenv("TEIRE_GITHUB_TOKEN"); v != "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" && cfg.GithubToken == "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("GH_TOKEN"); v != "" && cfg.GithubToken == "" {
		cfg.GithubToken = v
	}
	if v := os.Getenv("TEIRE_SYNCED_SKIP_RECENT_AUTHOR_COMMITS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Synced.SkipRecentAuthorCommits = b
		}
	}
	if v := os.Getenv("TEIRE_SYNCED_RECENT_COMMIT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Synced.RecentCommitWindow = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
