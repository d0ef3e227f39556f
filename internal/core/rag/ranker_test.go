package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/supportbot/internal/models"
)

// stubEmbedder maps each text to a fixed vector and counts invocations.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func TestRankEmptyFAQsSkipsModel(t *testing.T) {
	emb := &stubEmbedder{}
	ranker := NewRanker(emb)

	got, err := ranker.Rank(context.Background(), "anything", nil, DefaultTopK)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, emb.calls, "embedding model must not be invoked for an empty FAQ set")
}

func TestRankFiltersBelowThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"what's your return policy":    {1, 0, 0},
		"What is your return policy?":  {0.95, 0.05, 0},
		"How do I reset my password?":  {0, 1, 0},
		"Do you ship internationally?": {0.1, 0.9, 0},
	}}
	ranker := NewRanker(emb)

	faqs := []models.FAQItem{
		{Question: "How do I reset my password?", Answer: "Use the reset link."},
		{Question: "What is your return policy?", Answer: "30 days."},
		{Question: "Do you ship internationally?", Answer: "Yes."},
	}

	got, err := ranker.Rank(context.Background(), "what's your return policy", faqs, DefaultTopK)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "What is your return policy?", got[0].Question)
	assert.Equal(t, 1, emb.calls, "questions and query must share one batched call")
}

func TestRankCapsAtTopK(t *testing.T) {
	vectors := map[string][]float32{"q": {1, 0, 0}}
	faqs := make([]models.FAQItem, 5)
	questions := []string{"a", "b", "c", "d", "e"}
	for i, q := range questions {
		faqs[i] = models.FAQItem{Question: q, Answer: q}
		// All similar to the query, slightly decreasing.
		vectors[q] = []float32{1, float32(i) * 0.1, 0}
	}
	ranker := NewRanker(&stubEmbedder{vectors: vectors})

	got, err := ranker.Rank(context.Background(), "q", faqs, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Question)
	assert.Equal(t, "b", got[1].Question)
	assert.Equal(t, "c", got[2].Question)
}

func TestRankStableOnTies(t *testing.T) {
	same := []float32{1, 0.2, 0}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"q":      {1, 0, 0},
		"first":  same,
		"second": same,
		"third":  same,
	}}
	ranker := NewRanker(emb)

	faqs := []models.FAQItem{
		{Question: "first"},
		{Question: "second"},
		{Question: "third"},
	}

	got, err := ranker.Rank(context.Background(), "q", faqs, DefaultTopK)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Question)
	assert.Equal(t, "second", got[1].Question)
	assert.Equal(t, "third", got[2].Question)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosine([]float32{1, 0}, []float32{1, 0, 0}), "mismatched dims score zero")
	assert.Zero(t, cosine(nil, []float32{1}), "empty vector scores zero")
}
