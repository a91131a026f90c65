package llm

import (
	"strings"
	"testing"

	"mailmaestro/core/domain"
)

func TestBuildAnalysisPromptEmbedsEmail(t *testing.T) {
	email := &domain.Email{
		FromEmail: "alice@corp.example",
		Subject:   "Q2 budget review",
		Body:      "Please review the attached budget before Thursday.",
	}

	prompt := BuildAnalysisPrompt(email)

	for _, want := range []string{
		"From: alice@corp.example",
		"Subject: Q2 budget review",
		"Please review the attached budget before Thursday.",
		`"category"`,
		`"action_required"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptTruncatesLongBody(t *testing.T) {
	email := &domain.Email{
		FromEmail: "bob@corp.example",
		Subject:   "Log dump",
		Body:      strings.Repeat("x", maxBodyLength+500),
	}

	prompt := BuildAnalysisPrompt(email)
	if strings.Contains(prompt, strings.Repeat("x", maxBodyLength+1)) {
		t.Error("body not truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("x", maxBodyLength)+"...") {
		t.Error("truncation marker missing from prompt")
	}
}

func TestCleanEmailBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips tags",
			in:   "<div><p>Hello <b>world</b></p></div>",
			want: "Hello world",
		},
		{
			name: "decodes entities",
			in:   "Tom &amp; Jerry &gt; everyone",
			want: "Tom & Jerry > everyone",
		},
		{
			name: "collapses whitespace",
			in:   "a    b\t\tc",
			want: "a b c",
		},
		{
			name: "plain text untouched",
			in:   "just a sentence",
			want: "just a sentence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanEmailBody(tt.in); got != tt.want {
				t.Errorf("CleanEmailBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"leading prose", `Sure: {"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.in); got != tt.want {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
