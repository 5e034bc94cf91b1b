// Package config loads and validates the run configuration from the
// process environment, with an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Mode selects how review feedback is published.
type Mode string

const (
	// ModeSummary posts one aggregated issue-level comment covering
	// every changed file.
	ModeSummary Mode = "summary"
	// ModeInline posts one review comment per changed file, anchored
	// to the first added line of that file's patch.
	ModeInline Mode = "inline"
)

// Config holds everything the reviewer needs for one run. It is read
// once at startup and validated before any collaborator is built.
type Config struct {
	EventPath  string
	Repository string

	GitHubToken string
	OpenAIKey   string

	Mode     Mode
	Model    string
	LogLevel string

	// GitHub App credentials, an alternative to GitHubToken.
	AppID             int64
	AppPrivateKeyPath string
	AppInstallationID int64
}

// environment variables recognized by Load. The GITHUB_* names match
// what GitHub Actions injects; GALE_* names are our own knobs.
var envVars = []string{
	"GITHUB_EVENT_PATH",
	"GITHUB_REPOSITORY",
	"GITHUB_TOKEN",
	"OPENAI_API_KEY",
	"GALE_MODE",
	"GALE_MODEL",
	"GALE_LOG_LEVEL",
	"GALE_APP_ID",
	"GALE_APP_PRIVATE_KEY_PATH",
	"GALE_APP_INSTALLATION_ID",
}

// Load reads configuration from the environment, falling back to a
// .env file in the working directory when present. Environment
// variables take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// The .env file is a local-run convenience and entirely optional.
	_ = v.ReadInConfig()

	for _, name := range envVars {
		if err := v.BindEnv(name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	v.SetDefault("GALE_MODE", string(ModeSummary))
	v.SetDefault("GALE_MODEL", "gpt-4o-mini")
	v.SetDefault("GALE_LOG_LEVEL", "info")

	cfg := &Config{
		EventPath:         v.GetString("GITHUB_EVENT_PATH"),
		Repository:        v.GetString("GITHUB_REPOSITORY"),
		GitHubToken:       v.GetString("GITHUB_TOKEN"),
		OpenAIKey:         v.GetString("OPENAI_API_KEY"),
		Mode:              Mode(v.GetString("GALE_MODE")),
		Model:             v.GetString("GALE_MODEL"),
		LogLevel:          v.GetString("GALE_LOG_LEVEL"),
		AppID:             v.GetInt64("GALE_APP_ID"),
		AppPrivateKeyPath: v.GetString("GALE_APP_PRIVATE_KEY_PATH"),
		AppInstallationID: v.GetInt64("GALE_APP_INSTALLATION_ID"),
	}
	return cfg, nil
}

// Validate checks that every required setting is present. It must pass
// before any remote call is attempted.
func (c *Config) Validate() error {
	if c.EventPath == "" {
		return errors.New("GITHUB_EVENT_PATH is not set")
	}
	if c.Repository == "" {
		return errors.New("GITHUB_REPOSITORY is not set")
	}
	if _, _, err := c.SplitRepository(); err != nil {
		return err
	}
	if c.GitHubToken == "" && !c.HasAppCredentials() {
		return errors.New("either GITHUB_TOKEN or the GitHub App credentials (GALE_APP_ID, GALE_APP_PRIVATE_KEY_PATH, GALE_APP_INSTALLATION_ID) must be set")
	}
	if c.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.Mode != ModeSummary && c.Mode != ModeInline {
		return fmt.Errorf("GALE_MODE must be %q or %q, got %q", ModeSummary, ModeInline, c.Mode)
	}
	return nil
}

// HasAppCredentials reports whether the GitHub App credential trio is
// fully configured.
func (c *Config) HasAppCredentials() bool {
	return c.AppID != 0 && c.AppPrivateKeyPath != "" && c.AppInstallationID != 0
}

// SplitRepository splits the owner/name repository identifier.
func (c *Config) SplitRepository() (owner, name string, err error) {
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("GITHUB_REPOSITORY must be owner/name, got %q", c.Repository)
	}
	return owner, name, nil
}
