package rag

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/models"
)

const (
	// DefaultTopK caps how many FAQ entries are handed to the composer.
	DefaultTopK = 3
	// RelevanceThreshold is the minimum cosine similarity for an FAQ
	// question to count as relevant to the query.
	RelevanceThreshold = 0.5
)

// Ranker selects the FAQ entries most semantically relevant to a query by
// embedding the FAQ questions and the query with the same model and scoring
// them with cosine similarity.
type Ranker struct {
	embedder core.EmbeddingProvider
}

func NewRanker(embedder core.EmbeddingProvider) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank returns at most topK FAQ entries scoring above RelevanceThreshold,
// ordered by descending similarity. Ties keep the original FAQ order. An
// empty FAQ set returns immediately without touching the embedding model.
func (r *Ranker) Rank(ctx context.Context, query string, faqs []models.FAQItem, topK int) ([]models.FAQItem, error) {
	if len(faqs) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	// One batched call: every FAQ question plus the query itself.
	texts := make([]string, 0, len(faqs)+1)
	for _, f := range faqs {
		texts = append(texts, f.Question)
	}
	texts = append(texts, query)

	vecs, err := r.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed faq questions: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	queryVec := vecs[len(vecs)-1]

	type scored struct {
		item  models.FAQItem
		score float64
	}
	candidates := make([]scored, 0, len(faqs))
	for i, f := range faqs {
		score := cosine(queryVec, vecs[i])
		if score > RelevanceThreshold {
			candidates = append(candidates, scored{item: f, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]models.FAQItem, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
