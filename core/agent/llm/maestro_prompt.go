package llm

import (
	"fmt"
	"regexp"
	"strings"

	"mailmaestro/core/domain"
)

const maxBodyLength = 4000

const analysisSystemPrompt = `You are an email analysis assistant. Analyze the email and respond ONLY with a JSON object matching the requested format. No explanation, no markdown.`

// BuildAnalysisPrompt renders the per-email analysis prompt. Sender, subject
// and the cleaned body are embedded verbatim; the body is truncated to keep
// the request within token limits.
func BuildAnalysisPrompt(email *domain.Email) string {
	body := truncateBody(CleanEmailBody(email.Body), maxBodyLength)

	var sb strings.Builder
	sb.WriteString("Analyze the following email.\n\n")
	sb.WriteString(fmt.Sprintf("From: %s\n", email.FromEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\n", email.Subject))
	sb.WriteString(fmt.Sprintf("Body:\n%s\n\n", body))
	sb.WriteString(`Respond with a JSON object:
{
  "summary": "2-3 sentence summary of the email",
  "category": "work|personal|finance|shopping|travel|social|promotions|newsletters|uncategorized",
  "priority": "urgent|high|medium|low|lowest",
  "sentiment": "positive|neutral|negative",
  "action_required": true or false,
  "confidence": 0.0 to 1.0,
  "key_points": ["important point", ...],
  "tasks": [
    {
      "title": "actionable task from the email",
      "description": "what needs to be done",
      "due_date": "2026-01-02T15:04:05Z or 2026-01-02 if mentioned, otherwise omit",
      "assignee": "who should do it, if mentioned",
      "urgency": "low|medium|high|urgent"
    }
  ],
  "meeting": {
    "title": "meeting title",
    "start_time": "RFC3339 timestamp if mentioned",
    "end_time": "RFC3339 timestamp if mentioned",
    "location": "where, if mentioned",
    "attendees": ["email or name", ...]
  }
}

Rules:
- "tasks" is an empty array when the email contains no actionable items.
- Omit "meeting" entirely unless the email proposes or confirms a meeting.
- category, priority, sentiment and urgency must use the listed values exactly.`)
	return sb.String()
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	multiLineRe  = regexp.MustCompile(`\n{3,}`)
)

// CleanEmailBody strips HTML tags and collapses whitespace so prompts carry
// text rather than markup.
func CleanEmailBody(body string) string {
	cleaned := htmlTagRe.ReplaceAllString(body, " ")
	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")
	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", `"`)
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = multiLineRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

func truncateBody(body string, maxLen int) string {
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}
