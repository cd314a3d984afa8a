package orchestrator

import "strings"

// Fixed keyword-membership heuristics: case-insensitive substring checks.
// They are intentionally simple and overlapping; ties are broken by the
// dispatch rule order, not by scoring.

var selfCareTriggers = []string{
	"self care", "self-care",
	"what can i do", "give me tips", "tips for",
	"improve my health", "stay healthy", "healthy habits",
	"how can i improve",
}

var symptomTriggers = []string{
	"pain", "ache", "dizzy", "dizziness", "nausea", "headache",
	"fever", "cough", "rash",
	"anxious", "anxiety", "stress", "panic",
	"can't sleep", "cannot sleep", "insomnia",
	"tired", "fatigue", "not feeling well",
}

func asksSelfCare(text string) bool {
	return matchesAny(text, selfCareTriggers)
}

func mentionsSymptom(text string) bool {
	return matchesAny(text, symptomTriggers)
}

// isHealthRelated is the health-relevance heuristic for text turns. A
// turn matching neither trigger set is routed to general chat.
func isHealthRelated(text string) bool {
	return asksSelfCare(text) || mentionsSymptom(text)
}

func matchesAny(text string, triggers []string) bool {
	lowered := strings.ToLower(text)
	for _, trigger := range triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}
