package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

// maxSlackFailures caps the failure lines posted; the rest are summarised.
const maxSlackFailures = 10

// SlackChannel posts copy summaries to a Slack incoming webhook URL.
type SlackChannel struct {
	cfg    config.SlackConfig
	client *http.Client
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color    string       `json:"color"`
	Fallback string       `json:"fallback"`
	Title    string       `json:"title,omitempty"`
	Text     string       `json:"text,omitempty"`
	Fields   []slackField `json:"fields,omitempty"`
	Footer   string       `json:"footer,omitempty"`
	Ts       int64        `json:"ts,omitempty"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: &http.Client{Timeout: 5 * time.Second}}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, evt Event) error {
	b, err := json.Marshal(slackPayload(evt, time.Now()))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Slack incoming webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}

// slackPayload renders evt as a summary attachment, plus one listing the
// failures when there are any.
func slackPayload(evt Event, now time.Time) slackMessage {
	owner := evt.Owner
	if owner == "" {
		owner = "current user"
	}
	summary := slackAttachment{
		Color:    statusColor(evt),
		Fallback: evt.Title,
		Title:    fmt.Sprintf("%s → %s", evt.Group, owner),
		Footer:   "gl2gh",
		Ts:       now.Unix(),
	}
	if evt.Type == EventCopyFailed {
		summary.Text = evt.Body
	} else {
		summary.Fields = []slackField{
			{Title: "Projects", Value: fmt.Sprint(evt.Counts["projects"]), Short: true},
			{Title: "Failed projects", Value: fmt.Sprint(evt.Counts["failed_projects"]), Short: true},
			{Title: "Refs pushed", Value: fmt.Sprint(evt.Counts["pushed_refs"]), Short: true},
			{Title: "Refs failed", Value: fmt.Sprint(evt.Counts["failed_refs"]), Short: true},
		}
		if links := repositoryLinks(evt.Repositories); links != "" {
			summary.Text = links
		}
	}
	msg := slackMessage{Text: evt.Title, Attachments: []slackAttachment{summary}}

	if len(evt.Failures) > 0 {
		lines := evt.Failures
		if len(lines) > maxSlackFailures {
			lines = append(lines[:maxSlackFailures:maxSlackFailures],
				fmt.Sprintf("…and %d more", len(evt.Failures)-maxSlackFailures))
		}
		msg.Attachments = append(msg.Attachments, slackAttachment{
			Color:    "#FF0000",
			Fallback: fmt.Sprintf("%d failures", len(evt.Failures)),
			Title:    "Failures",
			Text:     strings.Join(lines, "\n"),
		})
	}
	return msg
}

// repositoryLinks formats repos as Slack links, one per line, sorted by name.
func repositoryLinks(repos map[string]string) string {
	names := make([]string, 0, len(repos))
	for name := range repos {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("<%s|%s>", repos[name], name)
	}
	return strings.Join(lines, "\n")
}

func statusColor(evt Event) string {
	switch {
	case evt.Type == EventCopyFailed:
		return "#FF0000"
	case evt.Failed:
		return "#FFAA00"
	default:
		return "#2EB67D"
	}
}
