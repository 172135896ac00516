package starnotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// SlackNotifier posts new-star announcements to a Slack incoming webhook
// using the Block Kit payload format.
type SlackNotifier struct {
	WebhookURL string
	Repository string

	client *http.Client
}

// NewSlackNotifier returns a notifier posting to the given webhook URL.
func NewSlackNotifier(webhookURL, repo string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Repository: repo,
		client:     initHTTPClient(20 * time.Second),
	}
}

// Name implements Notifier.
func (sn *SlackNotifier) Name() string { return "slack" }

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

// Notify implements Notifier.
func (sn *SlackNotifier) Notify(event StarEvent) error {
	msg := slackMessage{
		Text: fmt.Sprintf("⭐ New Star on %s!", sn.Repository),
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: "⭐ New Star!"},
			},
			{
				Type: "section",
				Fields: []slackText{
					{
						Type: "mrkdwn",
						Text: fmt.Sprintf("*Repository:*\n%s", sn.Repository),
					},
					{
						Type: "mrkdwn",
						Text: fmt.Sprintf("*Stargazer:*\n<%s|@%s>", event.HTMLURL, event.Login),
					},
				},
			},
		},
	}
	if event.Name != "" {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Name:* %s", event.Name)},
		})
	}
	if event.Bio != "" {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Bio:* %s", event.Bio)},
		})
	}
	msg.Blocks = append(msg.Blocks, slackBlock{
		Type: "section",
		Text: &slackText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Followers:* %s", formatCount(event.Followers)),
		},
	})
	return sn.post(msg)
}

func (sn *SlackNotifier) post(msg slackMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encoding Slack message")
	}
	if sn.client == nil {
		sn.client = initHTTPClient(20 * time.Second)
	}
	resp, err := sn.client.Post(sn.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "error reaching Slack webhook")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("Slack webhook error: %v", resp.Status)
	}
	return nil
}
