package starnotify

import "time"

// StarEvent carries everything a notification channel needs to announce a
// new stargazer. It is built only for stargazers that pass the follower
// threshold and is never persisted.
type StarEvent struct {
	Login     string
	HTMLURL   string
	Name      string
	Bio       string
	Followers int
	Location  string
	Company   string
	StarredAt time.Time
}

// Notifier announces a new star on some channel. Implementations must treat
// delivery as best-effort: an error is reported back for logging but the
// caller will not retry.
type Notifier interface {
	// Name identifies the channel in log output.
	Name() string

	// Notify sends a message describing the event.
	Notify(event StarEvent) error
}
