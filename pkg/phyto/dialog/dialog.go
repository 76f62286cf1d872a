// Package dialog holds the conversational surface of the engine: reply
// classification and question phrasing. Both are keyword tables so they
// can be extended without touching control flow.
package dialog

import (
	"fmt"
	"strings"
)

// Reply classifies a user's answer to a follow-up question.
type Reply int

const (
	// ReplyNewSymptom means the input is a fresh symptom report.
	ReplyNewSymptom Reply = iota
	// ReplyConfirmed means the user affirmed the asked symptom.
	ReplyConfirmed
	// ReplyDenied means the user denied the asked symptom.
	ReplyDenied
)

// Confirm keywords are checked before deny keywords; both are substring
// matches over the whole lowercased input.
var (
	confirmKeywords = []string{"yes", "y", "yeah", "definitely", "observed"}
	denyKeywords    = []string{"no", "n", "nope", "not", "never", "absent"}
)

// Classify decides whether the input confirms, denies, or reports a new
// symptom.
func Classify(input string) Reply {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, kw := range confirmKeywords {
		if strings.Contains(lower, kw) {
			return ReplyConfirmed
		}
	}
	for _, kw := range denyKeywords {
		if strings.Contains(lower, kw) {
			return ReplyDenied
		}
	}
	return ReplyNewSymptom
}

// questionRule phrases a question for symptoms matching its keywords.
type questionRule struct {
	keywords []string
	prefixes []string
	template string
}

var questionRules = []questionRule{
	{keywords: []string{"soil", "ground", "environment"}, template: "Do you observe %s around the plant?"},
	{keywords: []string{"stress", "condition", "temperature"}, template: "Is the plant showing signs of %s?"},
	{prefixes: []string{"dry", "wet"}, template: "Are there %s conditions affecting the plant?"},
}

const (
	defaultQuestion = "Do you observe %s on the plant?"

	// OpenPrompt asks for more free-text symptoms when there is no
	// specific symptom to ask about.
	OpenPrompt = "Please describe any other symptoms you observe."
)

// FormatQuestion turns a symptom into a natural-language question using
// the first matching phrasing rule. An empty symptom yields the generic
// open-ended prompt.
func FormatQuestion(symptom string) string {
	symptom = strings.ToLower(strings.TrimSpace(symptom))
	if symptom == "" {
		return OpenPrompt
	}

	for _, rule := range questionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(symptom, kw) {
				return fmt.Sprintf(rule.template, symptom)
			}
		}
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(symptom, prefix) {
				return fmt.Sprintf(rule.template, symptom)
			}
		}
	}
	return fmt.Sprintf(defaultQuestion, symptom)
}
