package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"starnotify"
)

const (
	envGitHubToken    = "GITHUB_TOKEN"
	envGitHubRepo     = "GITHUB_REPO"
	envSlackWebhook   = "SLACK_WEBHOOK_URL"
	envDiscordWebhook = "DISCORD_WEBHOOK_URL"
	envMinFollowers   = "MIN_FOLLOWERS"
	envStateFile      = "STATE_FILE"
)

func main() {
	log, err := logger()
	if err != nil {
		exit(err)
	}
	app, err := setup(log)
	if err != nil {
		exitUsage(err)
	}
	if err := app.run(); err != nil {
		log.Errorw("run failed", "err", err.Error())
		os.Exit(1)
	}
}

func logger() (*zap.SugaredLogger, error) {
	var (
		log *zap.Logger
		err error
	)
	switch strings.ToLower(os.Getenv("ENV")) {
	case "dev", "development":
		log, err = zap.NewDevelopment()
	case "prod", "production":
		log, err = zap.NewProduction()
	default:
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

type app struct {
	watcher    *starnotify.StarWatcher
	once       bool
	history    bool
	historyTop int
}

func setup(log *zap.SugaredLogger) (*app, error) {
	var (
		once         = flag.Bool("once", false, "Run a single check and exit")
		history      = flag.Bool("history", false, "Print a star history report and exit")
		top          = flag.Int("top", 10, "Number of stargazers to show with -history")
		interval     = flag.Int("interval", 300, "Seconds between checks in continuous mode")
		minFollowers = flag.Int("min-followers", -1, "Minimum followers to notify (overrides MIN_FOLLOWERS)")
	)

	flag.Usage = usage
	flag.Parse()
	if *interval < 1 {
		return nil, fmt.Errorf("minimum interval is one second")
	}
	if *top < 1 {
		return nil, fmt.Errorf("-top must be at least 1")
	}
	cfg, err := starnotify.LoadConfig()
	if err != nil {
		return nil, err
	}
	if *minFollowers >= 0 {
		cfg.MinFollowers = *minFollowers
	}

	github, err := starnotify.NewGitHubClient(cfg.Repository, cfg.GitHubToken,
		starnotify.WithGitHubLogger(log))
	if err != nil {
		return nil, err
	}
	store := starnotify.NewStore(cfg.StateFile, starnotify.WithStoreLogger(log))

	var notifiers []starnotify.Notifier
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, starnotify.NewSlackNotifier(cfg.SlackWebhookURL, cfg.Repository))
	}
	if cfg.DiscordWebhookURL != "" {
		notifiers = append(notifiers, starnotify.NewDiscordNotifier(cfg.DiscordWebhookURL, cfg.Repository))
	}
	if len(notifiers) == 0 {
		log.Infow("no webhook channels configured, new stars will only be logged")
	}

	watcher, err := starnotify.NewStarWatcher(github, store,
		starnotify.WithWatcherLogger(log),
		starnotify.WithNotifiers(notifiers...),
		starnotify.WithMinFollowers(cfg.MinFollowers),
		starnotify.WithInterval(time.Duration(*interval)*time.Second))
	if err != nil {
		return nil, err
	}
	return &app{
		watcher:    watcher,
		once:       *once,
		history:    *history,
		historyTop: *top,
	}, nil
}

func (a *app) run() error {
	switch {
	case a.history:
		return a.printHistory()
	case a.once:
		return a.watcher.Check()
	default:
		a.watcher.Watch()
		return nil
	}
}

func (a *app) printHistory() error {
	report, err := a.watcher.History(a.historyTop)
	if err != nil {
		return err
	}
	fmt.Printf("Star history for %s\n", report.Repository)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total stars: %d\n\n", report.TotalStars)
	fmt.Println("Recent stargazers:")
	for i, entry := range report.Recent {
		if !entry.Enriched {
			fmt.Printf("%d. @%s\n", i+1, entry.Login)
			continue
		}
		name := entry.Name
		if name == "" {
			name = "N/A"
		}
		fmt.Printf("%d. @%s - %s (%d followers)\n", i+1, entry.Login, name, entry.Followers)
	}
	return nil
}

func exit(err error) {
	log.SetFlags(0)
	log.SetPrefix("")
	log.Fatal(err)
}

func exitUsage(err error) {
	log.SetFlags(0)
	log.SetPrefix(filepath.Base(os.Args[0]) + ": ")
	log.Print(err)
	flag.Usage()
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		`usage: %s [arguments]

With no arguments, checks for new stargazers immediately and then every
-interval seconds, forever.

Optional arguments:
  -once           Run a single check cycle and exit. A failed cycle exits
                  with a non-zero status.
  -history        Print a read-only report of the repository's stargazers
                  and exit. No state is written.
  -top            How many stargazers to list with -history. Default 10.
  -interval       Seconds between checks in continuous mode. Default 300.
                  Must be 1 or greater.
  -min-followers  Only notify about stargazers with at least this many
                  followers. Overrides %s for this invocation.

environment:
  %-20s GitHub API token. Required.
  %-20s Repository to watch, in owner/repo format. Required.
  %-20s Slack incoming webhook URL. Slack notifications are
                       skipped when unset.
  %-20s Discord webhook URL. Discord notifications are
                       skipped when unset.
  %-20s Minimum followers to notify. Default 0.
  %-20s Path of the state file. Default stars_state.json.
`,
		filepath.Base(os.Args[0]),
		envMinFollowers,
		envGitHubToken,
		envGitHubRepo,
		envSlackWebhook,
		envDiscordWebhook,
		envMinFollowers,
		envStateFile)
}
