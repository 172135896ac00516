package starnotify

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config is the environment-sourced configuration, built once at startup
// and handed to components by parameter.
type Config struct {
	// GitHubToken authenticates requests to the GitHub API.
	GitHubToken string `env:"GITHUB_TOKEN,required,notEmpty"`

	// Repository is the repository to watch, in owner/repo format.
	Repository string `env:"GITHUB_REPO,required,notEmpty"`

	// SlackWebhookURL enables the Slack channel when non-empty.
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`

	// DiscordWebhookURL enables the Discord channel when non-empty.
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`

	// MinFollowers suppresses notifications for stargazers with fewer
	// followers.
	MinFollowers int `env:"MIN_FOLLOWERS" envDefault:"0"`

	// StateFile is where the known-stars state is persisted.
	StateFile string `env:"STATE_FILE" envDefault:"stars_state.json"`
}

// LoadConfig reads configuration from the environment. Missing required
// variables are an error, reported before any network activity happens.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "loading configuration from environment")
	}
	return cfg, nil
}
