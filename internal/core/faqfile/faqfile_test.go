package faqfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/supportbot/internal/models"
)

func TestDecodeJSON(t *testing.T) {
	data := []byte(`[{"question":"What is your return policy?","answer":"30 days."}]`)
	faqs, err := Decode("faqs.json", data)
	require.NoError(t, err)
	assert.Equal(t, []models.FAQItem{{Question: "What is your return policy?", Answer: "30 days."}}, faqs)
}

func TestDecodeJSONMissingField(t *testing.T) {
	data := []byte(`[{"question":"only a question"}]`)
	_, err := Decode("faqs.json", data)
	assert.Error(t, err)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := Decode("faqs.json", []byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	data := []byte("question,answer\nDo you ship?,Yes.\nReturns?,30 days.\n")
	faqs, err := Decode("faqs.csv", data)
	require.NoError(t, err)
	require.Len(t, faqs, 2)
	assert.Equal(t, "Do you ship?", faqs[0].Question)
	assert.Equal(t, "30 days.", faqs[1].Answer)
}

func TestDecodeCSVMissingColumns(t *testing.T) {
	data := []byte("q,a\nDo you ship?,Yes.\n")
	_, err := Decode("faqs.csv", data)
	assert.ErrorContains(t, err, "'question' and 'answer' columns")
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	_, err := Decode("faqs.pdf", []byte("whatever"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeEmptySet(t *testing.T) {
	_, err := Decode("faqs.json", []byte(`[]`))
	assert.ErrorIs(t, err, ErrNoFAQs)
}
