package domain

import "time"

// Default values substituted by the normalizer for missing or invalid fields.
const (
	DefaultCategory  = CategoryUncategorized
	DefaultPriority  = PriorityMedium
	DefaultSentiment = SentimentNeutral

	// DefaultConfidence applies when a field was repaired; FailureConfidence
	// applies when the whole response failed to parse or the gateway errored.
	DefaultConfidence = 0.8
	FailureConfidence = 0.5
)

// AnalysisResult is the per-email output of the analysis pipeline. It is
// ephemeral: immediately folded into the email row (plus derived task and
// event rows) and discarded.
type AnalysisResult struct {
	Summary        string          `json:"summary"`
	Category       EmailCategory   `json:"category"`
	Priority       EmailPriority   `json:"priority"`
	Sentiment      Sentiment       `json:"sentiment"`
	ActionRequired bool            `json:"action_required"`
	Confidence     float64         `json:"confidence"`
	KeyPoints      []string        `json:"key_points"`
	Tasks          []ExtractedTask `json:"tasks,omitempty"`
	Meeting        *MeetingDetails `json:"meeting,omitempty"`
}

// ExtractedTask is a task the model pulled out of an email body.
type ExtractedTask struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Assignee    string      `json:"assignee,omitempty"`
	Urgency     TaskUrgency `json:"urgency"`
}

// MeetingDetails describes a meeting the model detected in an email.
type MeetingDetails struct {
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Location  string     `json:"location,omitempty"`
	Attendees []string   `json:"attendees,omitempty"`
}

// DefaultAnalysis returns the safe-default record with every field populated.
func DefaultAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Category:       DefaultCategory,
		Priority:       DefaultPriority,
		Sentiment:      DefaultSentiment,
		ActionRequired: false,
		Confidence:     DefaultConfidence,
		KeyPoints:      []string{},
	}
}

// FailureAnalysis returns the record substituted when analysis failed
// entirely (transport error or unparseable response).
func FailureAnalysis() *AnalysisResult {
	res := DefaultAnalysis()
	res.Confidence = FailureConfidence
	return res
}

// EmailAnalysis pairs an email id with its analysis outcome. Failed reports
// whether the result is the failure default rather than a model response.
type EmailAnalysis struct {
	EmailID int64           `json:"email_id"`
	Result  *AnalysisResult `json:"result"`
	Failed  bool            `json:"failed"`
}
