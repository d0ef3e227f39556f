package rag

import (
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Outcome is the parsed result of one generation: the user-facing answer and
// machine-readable follow-up suggestions.
type Outcome struct {
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions"`
}

const (
	jsonFenceOpen = "```json"
	fenceClose    = "```"
)

// ParseGeneration splits raw model output into free-text answer and the
// suggestions array carried in an optional markdown-fenced JSON block.
//
// The parse is deliberately lenient: a missing fence means the whole text is
// the answer; an opening fence without a closing one is treated the same way
// (truncating the answer there would silently drop trailing content); a
// fenced payload that fails to decode costs only the suggestions, never the
// answer.
func ParseGeneration(raw string) Outcome {
	out := Outcome{Answer: strings.TrimSpace(raw), Suggestions: []string{}}

	start := strings.Index(raw, jsonFenceOpen)
	if start == -1 {
		return out
	}
	rest := raw[start+len(jsonFenceOpen):]
	end := strings.Index(rest, fenceClose)
	if end == -1 {
		return out
	}

	out.Answer = strings.TrimSpace(raw[:start])

	payload := strings.TrimSpace(rest[:end])
	var parsed struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		log.WithError(err).Warn("failed to parse suggestions JSON from model response")
		return out
	}
	if parsed.Suggestions != nil {
		out.Suggestions = parsed.Suggestions
	}
	return out
}
