package starnotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// discordBlurple is the color Discord uses for its own branding, applied to
// the embed accent stripe.
const discordBlurple = 0x5865F2

// DiscordNotifier posts new-star announcements to a Discord webhook as a
// single embed.
type DiscordNotifier struct {
	WebhookURL string
	Repository string

	client *http.Client
}

// NewDiscordNotifier returns a notifier posting to the given webhook URL.
func NewDiscordNotifier(webhookURL, repo string) *DiscordNotifier {
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		Repository: repo,
		client:     initHTTPClient(20 * time.Second),
	}
}

// Name implements Notifier.
func (dn *DiscordNotifier) Name() string { return "discord" }

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Notify implements Notifier.
func (dn *DiscordNotifier) Notify(event StarEvent) error {
	embed := discordEmbed{
		Title:       "⭐ New Star!",
		Description: fmt.Sprintf("Someone starred **%s**", dn.Repository),
		Color:       discordBlurple,
		Fields: []discordField{
			{
				Name:   "Stargazer",
				Value:  fmt.Sprintf("[@%s](%s)", event.Login, event.HTMLURL),
				Inline: true,
			},
		},
		Timestamp: event.StarredAt.Format(time.RFC3339),
	}
	if event.Name != "" {
		embed.Fields = append(embed.Fields, discordField{
			Name:   "Name",
			Value:  event.Name,
			Inline: true,
		})
	}
	if event.Bio != "" {
		embed.Description += fmt.Sprintf("\n\n**Bio:** %s", event.Bio)
	}
	embed.Fields = append(embed.Fields, discordField{
		Name:   "Followers",
		Value:  formatCount(event.Followers),
		Inline: true,
	})
	return dn.post(discordMessage{Embeds: []discordEmbed{embed}})
}

func (dn *DiscordNotifier) post(msg discordMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encoding Discord message")
	}
	if dn.client == nil {
		dn.client = initHTTPClient(20 * time.Second)
	}
	resp, err := dn.client.Post(dn.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "error reaching Discord webhook")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("Discord webhook error: %v", resp.Status)
	}
	return nil
}
