// Package starnotify watches a GitHub repository for new stargazers and
// sends a notification to configured webhook channels (Slack, Discord) for
// each one, remembering who has already been seen in a small JSON state
// file so nobody gets announced twice.
package starnotify
