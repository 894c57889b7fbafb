package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

type senderStub struct {
	notices []models.UploadNotice
	result  models.NotifyResult
	err     error
}

func (s *senderStub) Send(ctx context.Context, notice models.UploadNotice) (models.NotifyResult, error) {
	s.notices = append(s.notices, notice)
	return s.result, s.err
}

func TestAdminDeleteFile(t *testing.T) {
	store := newObjectStoreStub()
	store.objects["CSE/5/notes/1_a.pdf"] = []byte("x")
	svc := NewAdminService(newTestSessions(t), store, &senderStub{}, nil, nil)
	ctx := context.Background()

	err := svc.DeleteFile(ctx, "wrong", "CSE/5/notes/1_a.pdf")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, "Unauthorized", appErrors.FromError(err).Message)

	err = svc.DeleteFile(ctx, "bitconnect2026", " ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Missing filePath", appErrors.FromError(err).Message)
	assert.Empty(t, store.removed)

	require.NoError(t, svc.DeleteFile(ctx, "bitconnect2026", "CSE/5/notes/1_a.pdf"))
	assert.Empty(t, store.objects)

	store.removeErr = errors.New("denied")
	err = svc.DeleteFile(ctx, "bitconnect2026", "CSE/5/notes/2_b.pdf")
	assert.ErrorIs(t, err, appErrors.ErrStorage)
	assert.Equal(t, "Failed to delete file from storage", appErrors.FromError(err).Message)
}

func TestAdminNotifyRelays(t *testing.T) {
	sender := &senderStub{result: models.NotifyResult{Success: true}}
	svc := NewAdminService(newTestSessions(t), newObjectStoreStub(), sender, nil, nil)

	result, err := svc.NotifyAdmin(context.Background(), sampleNotice)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []models.UploadNotice{sampleNotice}, sender.notices)
}
