package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"netpulse/internal/domain"
)

// SlackSender posts a Block Kit message to the channel's incoming webhook.
type SlackSender struct {
	client *http.Client
}

// NewSlackSender creates a Slack sender using the given HTTP client.
func NewSlackSender(client *http.Client) *SlackSender {
	return &SlackSender{client: client}
}

func (s *SlackSender) Type() domain.ChannelType {
	return domain.ChannelSlack
}

func (s *SlackSender) Send(ctx context.Context, channel *domain.NotificationChannel, n *Notification) error {
	return postJSON(ctx, s.client, channel.Settings.URL, buildSlackMessage(n), nil)
}

// slackMessage represents the Slack webhook payload.
type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

// slackBlock represents a Slack Block Kit block.
type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

// slackText represents text in Slack Block Kit.
type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// buildSlackMessage builds the Block Kit payload for an alert.
func buildSlackMessage(n *Notification) slackMessage {
	emoji := severityEmoji(n.Alert.Severity)

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{
				Type:  "plain_text",
				Text:  fmt.Sprintf("%s NetPulse Alert: %s", emoji, n.Config.Name),
				Emoji: true,
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Service:*\n%s", n.Alert.ServiceName),
				},
				{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Severity:*\n%s %s", emoji, strings.ToUpper(string(n.Alert.Severity))),
				},
			},
		},
		{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Message:*\n%s", n.Alert.Message),
			},
		},
	}

	if n.Alert.TriggeredValue != nil && n.Config.ConditionType == domain.ConditionThreshold {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Fields: []slackText{
				{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Value:*\n%g", *n.Alert.TriggeredValue),
				},
				{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Threshold:*\n%s %g", n.Config.Comparator, n.Config.Threshold),
				},
			},
		})
	}

	if n.Alert.MatchedPattern != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Pattern:*\n`%s`", n.Alert.MatchedPattern),
			},
		})
	}

	return slackMessage{Blocks: blocks}
}

// severityEmoji returns an emoji for the severity level.
func severityEmoji(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return "\U0001F534" // red circle
	case domain.SeverityWarning:
		return "\U0001F7E1" // yellow circle
	case domain.SeverityInfo:
		return "\U0001F535" // blue circle
	default:
		return "⚪" // white circle
	}
}
