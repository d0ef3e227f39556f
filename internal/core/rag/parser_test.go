package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenerationPlainText(t *testing.T) {
	got := ParseGeneration("plain answer, no fence")
	assert.Equal(t, "plain answer, no fence", got.Answer)
	assert.Empty(t, got.Suggestions)
	assert.NotNil(t, got.Suggestions)
}

func TestParseGenerationWithSuggestions(t *testing.T) {
	raw := "Answer text\n```json\n{\"suggestions\": [\"a\",\"b\"]}\n```"
	got := ParseGeneration(raw)
	assert.Equal(t, "Answer text", got.Answer)
	assert.Equal(t, []string{"a", "b"}, got.Suggestions)
}

func TestParseGenerationMalformedJSONKeepsAnswer(t *testing.T) {
	raw := "Answer\n```json\n{not valid json}\n```"
	got := ParseGeneration(raw)
	assert.Equal(t, "Answer", got.Answer)
	assert.Empty(t, got.Suggestions)
}

func TestParseGenerationUnterminatedFence(t *testing.T) {
	raw := "Answer text\n```json\n{\"suggestions\": [\"a\"]}"
	got := ParseGeneration(raw)
	// No closing fence means no structured section; the whole text stands.
	assert.Equal(t, "Answer text\n```json\n{\"suggestions\": [\"a\"]}", got.Answer)
	assert.Empty(t, got.Suggestions)
}

func TestParseGenerationMissingSuggestionsKey(t *testing.T) {
	raw := "Answer\n```json\n{\"other\": 1}\n```"
	got := ParseGeneration(raw)
	assert.Equal(t, "Answer", got.Answer)
	assert.Empty(t, got.Suggestions)
	assert.NotNil(t, got.Suggestions)
}

func TestParseGenerationTrailingTextAfterFence(t *testing.T) {
	raw := "Answer\n```json\n{\"suggestions\": []}\n```\nignored trailer"
	got := ParseGeneration(raw)
	assert.Equal(t, "Answer", got.Answer)
	assert.Empty(t, got.Suggestions)
}
