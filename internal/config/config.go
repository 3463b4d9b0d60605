package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// DefaultOwner is the organization whose clones sit in the workspace under
// their bare repository name. Clones of any other owner carry an owner
// suffix.
const DefaultOwner = "Utilities-tkgieng"

type Config struct {
	GithubToken  string `mapstructure:"github_token"`
	GithubOwner  string `mapstructure:"github_owner"`
	GitWorkspace string `mapstructure:"git_workspace"`
	ParamsRepo   string `mapstructure:"params_repo"`
	ParamsFile   string `mapstructure:"params_file"`
	LogLevel     string `mapstructure:"log_level"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	workspace := ""
	if home, err := os.UserHomeDir(); err == nil {
		workspace = filepath.Join(home, "git")
	}
	return &Config{
		GithubOwner:  DefaultOwner,
		GitWorkspace: workspace,
		ParamsRepo:   "params",
		ParamsFile:   "release-tags.yml",
		LogLevel:     "info",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// GitHub token is optional - only validate if provided
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.ParamsRepo); err != nil {
		return fmt.Errorf("invalid github configuration: %w", err)
	}
	if c.GitWorkspace == "" {
		return fmt.Errorf("git_workspace cannot be empty")
	}
	if strings.Contains(c.GitWorkspace, "..") {
		return fmt.Errorf("git_workspace contains invalid path traversal")
	}
	if c.ParamsFile == "" {
		return fmt.Errorf("params_file cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// ValidateForGitHubOperations validates that GitHub token is present for operations that require it
func (c *Config) ValidateForGitHubOperations() error {
	if c.GithubToken == "" {
		return fmt.Errorf("github_token is required for GitHub operations")
	}
	return c.Validate()
}

// RepoDir returns the local clone path for repo inside the workspace. The
// owner suffix applies only to clones of a non-default owner; the default
// owner's clones use the bare repo name.
func (c *Config) RepoDir(repo string) string {
	if c.GithubOwner != DefaultOwner {
		return filepath.Join(c.GitWorkspace, repo+"-"+c.GithubOwner)
	}
	return filepath.Join(c.GitWorkspace, repo)
}

// ParamsDir returns the local clone path of the params repository.
func (c *Config) ParamsDir() string {
	return c.RepoDir(c.ParamsRepo)
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	// Validate token format patterns
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".releasectl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	// Configure environment variables
	viper.SetEnvPrefix("RELEASECTL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	// BindEnv allows multiple env vars - it will check them in order
	if err := viper.BindEnv("github_token", "GITHUB_TOKEN", "RELEASECTL_GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind github_token env: %w", err)
	}
	if err := viper.BindEnv("github_owner", "GITHUB_OWNER", "RELEASECTL_GITHUB_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind github_owner env: %w", err)
	}
	if err := viper.BindEnv("git_workspace", "GIT_WORKSPACE", "RELEASECTL_GIT_WORKSPACE"); err != nil {
		return nil, fmt.Errorf("failed to bind git_workspace env: %w", err)
	}
	if err := viper.BindEnv("params_repo", "PARAMS_REPO", "RELEASECTL_PARAMS_REPO"); err != nil {
		return nil, fmt.Errorf("failed to bind params_repo env: %w", err)
	}
	if err := viper.BindEnv("params_file", "PARAMS_FILE", "RELEASECTL_PARAMS_FILE"); err != nil {
		return nil, fmt.Errorf("failed to bind params_file env: %w", err)
	}
	if err := viper.BindEnv("log_level", "RELEASECTL_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind log_level env: %w", err)
	}
	// Set defaults
	defaults := DefaultConfig()
	viper.SetDefault("github_owner", defaults.GithubOwner)
	viper.SetDefault("git_workspace", defaults.GitWorkspace)
	viper.SetDefault("params_repo", defaults.ParamsRepo)
	viper.SetDefault("params_file", defaults.ParamsFile)
	viper.SetDefault("log_level", defaults.LogLevel)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
