package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Slack rejects section texts longer than 3000 characters
const maxSectionBytes = 2900

func buildCaseMessage(event *model.Event, baseURL string) ([]slack.Block, string) {
	c := event.Case

	var headline string
	switch event.Type {
	case model.EventNewCase:
		headline = "New case"
	default:
		headline = "Case updated"
	}

	title := c.Title
	if baseURL != "" {
		title = fmt.Sprintf("<%s/cases/%s|%s>", strings.TrimRight(baseURL, "/"), c.ID, escape(c.Title))
	} else {
		title = escape(title)
	}
	text := fmt.Sprintf("%s: %s (%s)", headline, c.Title, c.Status)

	summary := fmt.Sprintf("*%s*: %s", headline, title)
	if c.Description != "" {
		summary += "\n" + escape(c.Description)
	}
	summary = truncateToMaxBytes(summary, maxSectionBytes)

	assignee := c.AssignedTo.String()
	if assignee == "" {
		assignee = "unassigned"
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+c.Status.String(), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Priority*\n"+c.Priority.String(), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Risk score*\n%d", c.RiskScore), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Assigned to*\n"+assignee, false, false),
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, summary, false, false), fields, nil),
	}

	if n := len(c.Timeline); n > 0 {
		last := c.Timeline[n-1]
		line := fmt.Sprintf("%s by %s", last.Action, last.Actor)
		if event.ActorID != "" && event.ActorID != last.Actor {
			line += fmt.Sprintf(" (event by %s)", event.ActorID)
		}
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, escape(truncateToMaxBytes(line, maxSectionBytes)), false, false),
		))
	}

	return blocks, text
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a rune
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
