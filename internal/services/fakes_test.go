package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/models"
)

// fakeDB implements the slices of core.DbClient the services touch. The
// embedded interface panics for anything a test did not expect to be called.
type fakeDB struct {
	core.DbClient

	mu             sync.Mutex
	recent         []models.ChatMessage
	saved          []models.ChatMessage
	stale          []models.SessionRef
	sessionHistory map[string][]models.ChatMessage
	summaries      []models.ChatSummary
	upserted       []models.ChatSummary
	bots           []models.Bot
}

func (f *fakeDB) CreateBot(_ context.Context, bot *models.Bot) error {
	f.bots = append(f.bots, *bot)
	return nil
}

func (f *fakeDB) GetRecentHistory(_ context.Context, _, _, _ string, _ int) ([]models.ChatMessage, error) {
	return f.recent, nil
}

func (f *fakeDB) CreateChatMessage(_ context.Context, msg *models.ChatMessage) error {
	f.saved = append(f.saved, *msg)
	return nil
}

func (f *fakeDB) ListStaleSessions(_ context.Context, _ string) ([]models.SessionRef, error) {
	return f.stale, nil
}

func (f *fakeDB) GetSessionHistory(_ context.Context, sessionID, _ string) ([]models.ChatMessage, error) {
	return f.sessionHistory[sessionID], nil
}

func (f *fakeDB) UpsertChatSummary(_ context.Context, summary *models.ChatSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, *summary)
	return nil
}

func (f *fakeDB) ListSummariesByBot(_ context.Context, _ string) ([]models.ChatSummary, error) {
	return f.summaries, nil
}

// fakeLLM records prompts and replays canned responses. Generate may be
// called from several goroutines at once during batch summarization.
type fakeLLM struct {
	response     string
	jsonResponse string
	err          error

	mu          sync.Mutex
	calls       int
	jsonCalls   int
	lastPrompt  string
	lastJSONReq string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastPrompt = userPrompt
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.jsonCalls++
	f.lastJSONReq = prompt
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.jsonResponse, nil
}

// fakeEmbedder mirrors the one in the rag package tests: fixed vectors per
// text, invocation counting, optional failure.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

// fakeStorage implements core.ObjectClient for bot creation tests.
type fakeStorage struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeStorage) UploadFile(_ context.Context, _, key string, data io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.uploads[key] = b
	return "https://bucket.s3.test.amazonaws.com/" + key, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, _, _ string) error { return nil }

func (f *fakeStorage) GetFile(_ context.Context, _, key string) ([]byte, error) {
	b, ok := f.uploads[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}
