package llm

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mailmaestro/core/domain"
)

// NormalizeOutcome tags how a raw model response became a usable result.
type NormalizeOutcome string

const (
	// OutcomeOK means the response parsed cleanly and every field was usable.
	OutcomeOK NormalizeOutcome = "ok"
	// OutcomeRepaired means the response parsed but one or more fields were
	// missing or invalid and were replaced with defaults.
	OutcomeRepaired NormalizeOutcome = "repaired"
	// OutcomeFailed means the response was not parseable at all and the
	// result is the full default record at reduced confidence.
	OutcomeFailed NormalizeOutcome = "failed"
)

// NormalizeReport describes what Normalize did to the raw response.
type NormalizeReport struct {
	Outcome  NormalizeOutcome
	Repaired []string
	ParseErr error
}

// Normalize converts a raw model response into a complete AnalysisResult.
// It never fails: an unparseable response yields the default record with
// confidence lowered to the failure value, and individually invalid fields
// are replaced by their documented defaults. structured indicates the
// response came pre-shaped from a function call, so fence stripping is
// skipped.
func Normalize(raw string, structured bool) (*domain.AnalysisResult, *NormalizeReport) {
	content := raw
	if !structured {
		content = stripJSONFences(content)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		result := domain.DefaultAnalysis()
		result.Confidence = domain.FailureConfidence
		result.Summary = "Analysis unavailable"
		return result, &NormalizeReport{Outcome: OutcomeFailed, ParseErr: err}
	}

	result := domain.DefaultAnalysis()
	report := &NormalizeReport{Outcome: OutcomeOK}

	repair := func(field string) {
		report.Outcome = OutcomeRepaired
		report.Repaired = append(report.Repaired, field)
	}

	var summary string
	if decodeField(fields, "summary", &summary) && summary != "" {
		result.Summary = summary
	} else {
		repair("summary")
	}

	var category string
	if decodeField(fields, "category", &category) &&
		domain.EmailCategory(normalizeEnum(category)).IsValid() {
		result.Category = domain.EmailCategory(normalizeEnum(category))
	} else {
		repair("category")
	}

	var priority string
	if decodeField(fields, "priority", &priority) &&
		domain.EmailPriority(normalizeEnum(priority)).IsValid() {
		result.Priority = domain.EmailPriority(normalizeEnum(priority))
	} else {
		repair("priority")
	}

	var sentiment string
	if decodeField(fields, "sentiment", &sentiment) &&
		domain.Sentiment(normalizeEnum(sentiment)).IsValid() {
		result.Sentiment = domain.Sentiment(normalizeEnum(sentiment))
	} else {
		repair("sentiment")
	}

	var actionRequired bool
	if decodeField(fields, "action_required", &actionRequired) {
		result.ActionRequired = actionRequired
	} else {
		repair("action_required")
	}

	var confidence float64
	if decodeField(fields, "confidence", &confidence) && confidence >= 0 && confidence <= 1 {
		result.Confidence = confidence
	} else {
		repair("confidence")
	}

	var keyPoints []string
	if decodeField(fields, "key_points", &keyPoints) {
		result.KeyPoints = keyPoints
	}
	if result.KeyPoints == nil {
		result.KeyPoints = []string{}
	}

	result.Tasks = normalizeTasks(fields)
	result.Meeting = normalizeMeeting(fields)

	return result, report
}

type rawTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Assignee    string `json:"assignee"`
	Urgency     string `json:"urgency"`
}

func normalizeTasks(fields map[string]json.RawMessage) []domain.ExtractedTask {
	var raws []rawTask
	if !decodeField(fields, "tasks", &raws) {
		return nil
	}

	tasks := make([]domain.ExtractedTask, 0, len(raws))
	for _, rt := range raws {
		if strings.TrimSpace(rt.Title) == "" {
			continue
		}
		task := domain.ExtractedTask{
			Title:       strings.TrimSpace(rt.Title),
			Description: rt.Description,
			Assignee:    rt.Assignee,
			Urgency:     domain.TaskUrgencyMedium,
		}
		if u := domain.TaskUrgency(normalizeEnum(rt.Urgency)); u.IsValid() {
			task.Urgency = u
		}
		if due := parseFlexTime(rt.DueDate); due != nil {
			task.DueDate = due
		}
		tasks = append(tasks, task)
	}
	return tasks
}

type rawMeeting struct {
	Title     string   `json:"title"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location"`
	Attendees []string `json:"attendees"`
}

func normalizeMeeting(fields map[string]json.RawMessage) *domain.MeetingDetails {
	var rm rawMeeting
	if !decodeField(fields, "meeting", &rm) {
		return nil
	}
	if strings.TrimSpace(rm.Title) == "" {
		return nil
	}
	return &domain.MeetingDetails{
		Title:     strings.TrimSpace(rm.Title),
		StartTime: parseFlexTime(rm.StartTime),
		EndTime:   parseFlexTime(rm.EndTime),
		Location:  rm.Location,
		Attendees: rm.Attendees,
	}
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// parseFlexTime accepts the timestamp shapes models actually emit.
func parseFlexTime(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// stripJSONFences removes markdown code fences the model may wrap around
// its JSON response, then cuts to the outermost object.
func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "{") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start >= 0 && end > start {
			content = content[start : end+1]
		}
	}
	return content
}
