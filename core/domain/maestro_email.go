package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailType distinguishes composed mail from received mail.
type EmailType string

const (
	EmailTypeInbox EmailType = "inbox"
	EmailTypeSent  EmailType = "sent"
)

// EmailCategory is the closed AI classification taxonomy.
type EmailCategory string

const (
	CategoryWork          EmailCategory = "work"
	CategoryPersonal      EmailCategory = "personal"
	CategoryFinance       EmailCategory = "finance"
	CategoryShopping      EmailCategory = "shopping"
	CategoryTravel        EmailCategory = "travel"
	CategorySocial        EmailCategory = "social"
	CategoryPromotions    EmailCategory = "promotions"
	CategoryNewsletters   EmailCategory = "newsletters"
	CategoryUncategorized EmailCategory = "uncategorized"
)

// Categories lists every valid category.
var Categories = []EmailCategory{
	CategoryWork, CategoryPersonal, CategoryFinance, CategoryShopping,
	CategoryTravel, CategorySocial, CategoryPromotions, CategoryNewsletters,
	CategoryUncategorized,
}

// IsValid reports whether c is inside the closed enumeration.
func (c EmailCategory) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// EmailPriority is the closed AI priority taxonomy.
type EmailPriority string

const (
	PriorityUrgent EmailPriority = "urgent"
	PriorityHigh   EmailPriority = "high"
	PriorityMedium EmailPriority = "medium"
	PriorityLow    EmailPriority = "low"
	PriorityLowest EmailPriority = "lowest"
)

// Priorities lists every valid priority.
var Priorities = []EmailPriority{
	PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow, PriorityLowest,
}

// IsValid reports whether p is inside the closed enumeration.
func (p EmailPriority) IsValid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Sentiment is the closed AI sentiment taxonomy.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// IsValid reports whether s is inside the closed enumeration.
func (s Sentiment) IsValid() bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// Email is the stored email record. AI fields are nil until the first
// analysis pass and are overwritten in place on re-analysis.
type Email struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	FromEmail string    `json:"from_email"`
	ToEmail   string    `json:"to_email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Type      EmailType `json:"type"`

	IsRead    bool `json:"is_read"`
	IsStarred bool `json:"is_starred"`

	// AI-derived fields
	AISummary        *string        `json:"ai_summary,omitempty"`
	AICategory       *EmailCategory `json:"ai_category,omitempty"`
	AIPriority       *EmailPriority `json:"ai_priority,omitempty"`
	AISentiment      *Sentiment     `json:"ai_sentiment,omitempty"`
	AIActionRequired *bool          `json:"ai_action_required,omitempty"`
	AIConfidence     *float64       `json:"ai_confidence,omitempty"`
	AIKeyPoints      []string       `json:"ai_key_points,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAnalyzed reports whether the email carries analysis results.
func (e *Email) IsAnalyzed() bool {
	return e.AICategory != nil
}

// ApplyAnalysis folds an analysis result into the email's AI fields.
func (e *Email) ApplyAnalysis(res *AnalysisResult) {
	e.AISummary = &res.Summary
	e.AICategory = &res.Category
	e.AIPriority = &res.Priority
	e.AISentiment = &res.Sentiment
	e.AIActionRequired = &res.ActionRequired
	e.AIConfidence = &res.Confidence
	e.AIKeyPoints = res.KeyPoints
}

// EmailFilter narrows email list queries. All predicates are ANDed.
type EmailFilter struct {
	UserID    uuid.UUID
	Type      *EmailType
	Category  *EmailCategory
	Priority  *EmailPriority
	IsRead    *bool
	IsStarred *bool
	Search    *string // matched against subject, body and sender
	Limit     int
	Offset    int
}
