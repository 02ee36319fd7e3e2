// Package notify builds and sends the tagged-post digest emails.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/token"
)

const (
	// maxRenderedPosts caps the body size; the subject still reports
	// the full count and an overflow notice points at the dashboard.
	maxRenderedPosts = 20
	bodyPreviewLen   = 150
	unsubscribeTTL   = 30 * 24 * time.Hour
)

// Message is the rendered digest, ready to hand to the email sender.
type Message struct {
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
}

// Renderer turns a user's new tagged posts into a digest email. Pure
// apart from minting the unsubscribe token.
type Renderer struct {
	tokens *token.Codec
	appURL string
}

func NewRenderer(tokens *token.Codec, appURL string) *Renderer {
	return &Renderer{tokens: tokens, appURL: strings.TrimSuffix(appURL, "/")}
}

type tagGroup struct {
	name  string
	color string
	posts []domain.TaggedPost
}

// Render builds the digest for userID. Posts arrive ordered by tag
// then post; they are regrouped by tag name in first-seen order, with
// relative order inside each group preserved.
func (r *Renderer) Render(userID string, posts []domain.TaggedPost) (*Message, error) {
	unsubToken, err := r.tokens.Issue(userID, unsubscribeTTL)
	if err != nil {
		return nil, fmt.Errorf("mint unsubscribe token: %w", err)
	}

	groups := groupByTag(posts)

	subject := fmt.Sprintf("Social Tracker: %d new tagged post", len(posts))
	if len(posts) != 1 {
		subject += "s"
	}

	overflow := len(posts) - maxRenderedPosts

	return &Message{
		Subject: subject,
		HTML:    r.renderHTML(groups, overflow),
		Text:    r.renderText(groups, overflow),
		Headers: map[string]string{
			"List-Unsubscribe":      fmt.Sprintf("<%s/api/unsubscribe?token=%s>", r.appURL, unsubToken),
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
	}, nil
}

func groupByTag(posts []domain.TaggedPost) []tagGroup {
	var groups []tagGroup
	index := make(map[string]int)
	for _, p := range posts {
		i, seen := index[p.TagName]
		if !seen {
			i = len(groups)
			index[p.TagName] = i
			groups = append(groups, tagGroup{name: p.TagName, color: p.TagColor})
		}
		groups[i].posts = append(groups[i].posts, p)
	}
	return groups
}

func (r *Renderer) renderHTML(groups []tagGroup, overflow int) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 700px; margin: 0 auto; padding: 20px; }\n")
	b.WriteString(".tag { display: inline-block; color: #fff; padding: 2px 10px; border-radius: 10px; font-size: 0.85em; }\n")
	b.WriteString(".post { margin: 15px 0; padding-bottom: 15px; border-bottom: 1px solid #ecf0f1; }\n")
	b.WriteString(".meta { color: #7f8c8d; font-size: 0.9em; }\n")
	b.WriteString(".body { margin: 8px 0; white-space: pre-wrap; }\n")
	b.WriteString(".footer { margin-top: 20px; padding-top: 10px; border-top: 2px solid #ecf0f1; color: #7f8c8d; font-size: 0.9em; }\n")
	b.WriteString("a { color: #e67e22; text-decoration: none; }\n")
	b.WriteString("a:hover { text-decoration: underline; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	rendered := 0
	for _, g := range groups {
		if rendered == maxRenderedPosts {
			break
		}
		b.WriteString(fmt.Sprintf("<h3><span class=\"tag\" style=\"background-color: %s\">%s</span></h3>\n",
			escapeHTML(g.color), escapeHTML(g.name)))

		for _, p := range g.posts {
			if rendered == maxRenderedPosts {
				break
			}
			rendered++

			b.WriteString("<div class=\"post\">\n")
			b.WriteString(fmt.Sprintf("<a href=\"%s/dashboard/posts/%s\"><strong>%s</strong></a>\n",
				r.appURL, p.PostID, escapeHTML(p.Title)))
			b.WriteString(fmt.Sprintf("<div class=\"meta\">r/%s &bull; u/%s</div>\n",
				escapeHTML(p.Subreddit), escapeHTML(p.Author)))
			if preview := bodyPreview(p.Body); preview != "" {
				b.WriteString(fmt.Sprintf("<div class=\"body\">%s</div>\n", escapeHTML(preview)))
			}
			b.WriteString("</div>\n")
		}
	}

	if overflow > 0 {
		b.WriteString(fmt.Sprintf("<p>and %d more &mdash; <a href=\"%s/dashboard\">view all in Social Tracker</a></p>\n",
			overflow, r.appURL))
	}

	b.WriteString("<div class=\"footer\">\n")
	b.WriteString(fmt.Sprintf("<a href=\"%s/settings/account\">Manage notification preferences</a>\n", r.appURL))
	b.WriteString("</div>\n")
	b.WriteString("</body>\n</html>")

	return b.String()
}

func (r *Renderer) renderText(groups []tagGroup, overflow int) string {
	var b strings.Builder

	rendered := 0
	for _, g := range groups {
		if rendered == maxRenderedPosts {
			break
		}
		b.WriteString(fmt.Sprintf("== %s ==\n\n", g.name))

		for _, p := range g.posts {
			if rendered == maxRenderedPosts {
				break
			}
			rendered++

			b.WriteString(p.Title + "\n")
			b.WriteString(fmt.Sprintf("r/%s - u/%s\n", p.Subreddit, p.Author))
			if preview := bodyPreview(p.Body); preview != "" {
				b.WriteString(preview + "\n")
			}
			b.WriteString(fmt.Sprintf("%s/dashboard/posts/%s\n\n", r.appURL, p.PostID))
		}
	}

	if overflow > 0 {
		b.WriteString(fmt.Sprintf("and %d more - view all in Social Tracker: %s/dashboard\n\n", overflow, r.appURL))
	}

	b.WriteString(fmt.Sprintf("Manage notification preferences: %s/settings/account\n", r.appURL))

	return b.String()
}

// bodyPreview truncates to bodyPreviewLen characters, not bytes, so a
// multibyte rune is never cut mid-sequence.
func bodyPreview(body *string) string {
	if body == nil {
		return ""
	}
	runes := []rune(*body)
	if len(runes) <= bodyPreviewLen {
		return *body
	}
	return string(runes[:bodyPreviewLen]) + "..."
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
