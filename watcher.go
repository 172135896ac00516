package starnotify

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StarWatcher runs the check cycle for a single repository: fetch the
// current stargazers, diff them against the known-set, enrich and filter
// the new ones, announce the survivors, and persist the updated known-set.
type StarWatcher struct {
	// MinFollowers suppresses notifications for stargazers with fewer
	// followers. Filtered stargazers still count as known and will not be
	// reconsidered on later checks.
	MinFollowers int

	// Interval is how often Watch runs a check. Each check runs inline, so
	// the interval is a lower bound on the time between checks.
	Interval time.Duration

	github    *GitHubClient
	store     *Store
	notifiers []Notifier
	known     KnownSet
	log       *zap.SugaredLogger
}

// NewStarWatcher returns a watcher wired to the given GitHub client and
// state store. The known-set is loaded from the store once, here.
func NewStarWatcher(github *GitHubClient, store *Store, options ...func(*StarWatcher)) (*StarWatcher, error) {
	if github == nil {
		return nil, errors.New("github client must be specified")
	}
	if store == nil {
		return nil, errors.New("state store must be specified")
	}
	w := &StarWatcher{
		Interval: 5 * time.Minute,
		github:   github,
		store:    store,
		known:    store.Load(),
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range options {
		o(w)
	}
	return w, nil
}

// WithWatcherLogger sets the *zap.SugaredLogger the watcher will use
// internally. Without it, a no-op log is used.
func WithWatcherLogger(logger *zap.SugaredLogger) func(*StarWatcher) {
	return func(w *StarWatcher) {
		w.log = logger
	}
}

// WithNotifiers sets the channels that new stars are announced on. With no
// notifiers, checks still run and the known-set still grows.
func WithNotifiers(notifiers ...Notifier) func(*StarWatcher) {
	return func(w *StarWatcher) {
		w.notifiers = notifiers
	}
}

// WithMinFollowers sets the minimum-follower notification threshold.
func WithMinFollowers(n int) func(*StarWatcher) {
	return func(w *StarWatcher) {
		w.MinFollowers = n
	}
}

// WithInterval sets how often Watch checks for new stars.
func WithInterval(d time.Duration) func(*StarWatcher) {
	return func(w *StarWatcher) {
		w.Interval = d
	}
}

// Known reports whether the identity key is in the watcher's known-set.
func (w *StarWatcher) Known(key string) bool {
	return w.known.Has(key)
}

// Check runs one full cycle. A listing failure aborts the cycle before any
// state changes, so the next check retries from scratch. A profile fetch
// failure leaves that one stargazer out of the known-set to be retried next
// check. Notification failures are logged and otherwise ignored. The
// known-set is persisted at the end of every completed cycle, and a
// persistence failure is returned after the in-memory set has been updated.
func (w *StarWatcher) Check() error {
	w.log.Infow("checking stars", "repo", w.github.Repository)
	gazers, err := w.github.Stargazers()
	if err != nil {
		return errors.Wrap(err, "checking for new stars")
	}
	fresh := DetectNew(gazers, w.known)
	if len(fresh) == 0 {
		w.log.Infow("no new stars", "repo", w.github.Repository)
	} else {
		w.log.Infow("found new stars",
			"repo", w.github.Repository,
			"count", len(fresh))
	}
	for _, sg := range fresh {
		profile, err := w.github.User(sg.Login)
		if err != nil {
			// Keep this one eligible for re-detection next check.
			delete(w.known, sg.Key())
			w.log.Warnw("unable to fetch profile, will retry next check",
				"login", sg.Login,
				"err", err.Error())
			continue
		}
		if profile.Followers < w.MinFollowers {
			w.log.Infow("skipping stargazer below follower threshold",
				"login", sg.Login,
				"followers", profile.Followers,
				"min_followers", w.MinFollowers)
			continue
		}
		event := StarEvent{
			Login:     sg.Login,
			HTMLURL:   sg.HTMLURL,
			Name:      profile.Name,
			Bio:       profile.Bio,
			Followers: profile.Followers,
			Location:  profile.Location,
			Company:   profile.Company,
			StarredAt: time.Now(),
		}
		w.log.Infow("new star",
			"repo", w.github.Repository,
			"login", event.Login,
			"name", event.Name,
			"followers", event.Followers,
			"location", event.Location)
		w.dispatch(event)
	}
	if err := w.store.Save(w.known, time.Now()); err != nil {
		return errors.Wrap(err, "persisting known stars")
	}
	return nil
}

// dispatch announces the event on every configured channel. Each channel is
// independent: one failing does not stop the others.
func (w *StarWatcher) dispatch(event StarEvent) {
	for _, n := range w.notifiers {
		if err := n.Notify(event); err != nil {
			w.log.Warnw("notification failed",
				"channel", n.Name(),
				"login", event.Login,
				"err", err.Error())
		}
	}
}

// Watch checks immediately and then keeps checking every Interval, forever.
// Check errors are logged and the loop carries on; there is no way to stop
// it short of ending the process.
func (w *StarWatcher) Watch() {
	w.log.Infow("watching for new stargazers",
		"repo", w.github.Repository,
		"poll_interval", w.Interval,
		"min_followers", w.MinFollowers)

	t := time.NewTicker(w.Interval)

	// This possibly-odd-looking for loop header causes the loop to run
	// immediately instead of having to wait for the duration of the ticker
	// to elapse first.
	for ; true; <-t.C {
		if err := w.Check(); err != nil {
			w.log.Errorw("check failed",
				"repo", w.github.Repository,
				"err", err.Error())
		}
	}
}

// HistoryEntry is one stargazer in a history report.
type HistoryEntry struct {
	Login     string
	Name      string
	Followers int

	// Enriched is false when the profile lookup failed and only the login
	// is available.
	Enriched bool
}

// HistoryReport summarizes the repository's current stargazers.
type HistoryReport struct {
	Repository string
	TotalStars int
	Recent     []HistoryEntry
}

// History fetches the current stargazers and returns the total count plus
// the first limit entries enriched with profile data. It reads no state and
// writes none.
func (w *StarWatcher) History(limit int) (*HistoryReport, error) {
	gazers, err := w.github.Stargazers()
	if err != nil {
		return nil, errors.Wrap(err, "fetching star history")
	}
	report := &HistoryReport{
		Repository: w.github.Repository,
		TotalStars: len(gazers),
	}
	if limit < 0 {
		limit = 0
	}
	if limit > len(gazers) {
		limit = len(gazers)
	}
	for _, sg := range gazers[:limit] {
		entry := HistoryEntry{Login: sg.Login}
		profile, err := w.github.User(sg.Login)
		if err != nil {
			w.log.Warnw("unable to fetch profile for history",
				"login", sg.Login,
				"err", err.Error())
		} else {
			entry.Name = profile.Name
			entry.Followers = profile.Followers
			entry.Enriched = true
		}
		report.Recent = append(report.Recent, entry)
	}
	return report, nil
}
