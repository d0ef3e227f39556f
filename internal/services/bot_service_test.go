package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/supportbot/internal/core/faqfile"
)

func TestCreateFromUpload(t *testing.T) {
	db := &fakeDB{}
	storage := &fakeStorage{}
	svc := NewBotService(db, storage, "test-bucket")

	data := []byte(`[{"question":"Returns?","answer":"30 days."}]`)
	bot, err := svc.CreateFromUpload(context.Background(), "admin-1", "Acme Helper", "faq set.json", "application/json", data)
	require.NoError(t, err)

	assert.Equal(t, "Acme Helper", bot.Name)
	assert.Equal(t, "admin-1", bot.OwnerID)
	require.Len(t, bot.FAQs, 1)
	assert.Equal(t, "Returns?", bot.FAQs[0].Question)
	assert.NotEmpty(t, bot.SourceURL)

	require.Len(t, db.bots, 1)
	assert.Equal(t, bot.ID, db.bots[0].ID)

	// Original upload archived under a sanitized key.
	key := "owners/admin-1/bots/" + bot.ID + "/faq_set.json"
	archived, err := storage.GetFile(context.Background(), "test-bucket", key)
	require.NoError(t, err)
	assert.Equal(t, data, archived)
}

func TestCreateFromUploadRejectsBadFile(t *testing.T) {
	svc := NewBotService(&fakeDB{}, &fakeStorage{}, "test-bucket")

	_, err := svc.CreateFromUpload(context.Background(), "admin-1", "Acme", "faqs.txt", "text/plain", []byte("x"))
	assert.ErrorIs(t, err, faqfile.ErrUnsupportedFormat)

	_, err = svc.CreateFromUpload(context.Background(), "admin-1", "Acme", "faqs.json", "application/json", []byte("[]"))
	assert.ErrorIs(t, err, faqfile.ErrNoFAQs)
}
