package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadUsecase(fs *fakeStorage) Usecase {
	return New(nil, fs, Options{
		KeyPrefix:   "uploads",
		UploadTTL:   15 * time.Minute,
		DownloadTTL: 5 * time.Minute,
		Now: func() time.Time {
			return time.Date(2025, time.May, 4, 10, 0, 0, 0, time.UTC)
		},
	})
}

func TestGetUploadTicket(t *testing.T) {
	fs := &fakeStorage{}
	u := newUploadUsecase(fs)

	ticket, err := u.GetUploadTicket(context.Background(), "cat photo.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "uploads/2025/05/04/cat%20photo.png", ticket.Key)
	assert.Equal(t, "PUT", ticket.Upload.Method)
	assert.Equal(t, "GET", ticket.Download.Method)
	assert.Equal(t, map[string]string{"Content-Type": "image/png"}, ticket.Upload.Headers)
	assert.NotEqual(t, ticket.Upload.URL, ticket.Download.URL)
	assert.True(t, ticket.Download.ExpiresAt.Before(ticket.Upload.ExpiresAt))
	assert.Equal(t, "https://cdn.test/"+ticket.Key, ticket.PublicURL)
	assert.Equal(t, []string{ticket.Key}, fs.puts)
	assert.Equal(t, []string{ticket.Key}, fs.gets)
}

func TestGetUploadTicketDetectsContentType(t *testing.T) {
	u := newUploadUsecase(&fakeStorage{})

	tests := map[string]string{
		"doc.pdf":    "application/pdf",
		"IMAGE.PNG":  "image/png",
		"noext":      defaultContentType,
		"weird.zzzq": defaultContentType,
	}
	for name, want := range tests {
		ticket, err := u.GetUploadTicket(context.Background(), name, "  ")
		require.NoError(t, err)
		assert.Equal(t, want, ticket.ContentType, name)
		assert.Equal(t, want, ticket.Upload.Headers["Content-Type"], name)
	}
}

func TestGetUploadTicketRequiresFilename(t *testing.T) {
	fs := &fakeStorage{}
	u := newUploadUsecase(fs)

	_, err := u.GetUploadTicket(context.Background(), "   ", "image/png")
	var verr ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "filename", verr.Field)
	assert.Empty(t, fs.puts)
}

func TestGetUploadTicketPropagatesConfigurationError(t *testing.T) {
	fs := &fakeStorage{err: ErrConfiguration{Missing: []string{"bucket"}}}
	u := newUploadUsecase(fs)

	_, err := u.GetUploadTicket(context.Background(), "a.png", "")
	var cerr ErrConfiguration
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"bucket"}, cerr.Missing)
}

func TestGetDownloadURL(t *testing.T) {
	fs := &fakeStorage{}
	u := newUploadUsecase(fs)

	_, err := u.GetDownloadURL(context.Background(), "")
	require.ErrorAs(t, err, new(ErrValidation))

	p, err := u.GetDownloadURL(context.Background(), "uploads/2025/05/04/a.png")
	require.NoError(t, err)
	assert.Equal(t, "GET", p.Method)
	assert.Contains(t, p.URL, "ttl=5m0s")
}

func TestGetUploadTicketRejectsOversizedKey(t *testing.T) {
	fs := &fakeStorage{}
	u := newUploadUsecase(fs)

	// 504 runes, but every "é" expands to six key bytes.
	filename := strings.Repeat("é", 500) + ".png"
	_, err := u.GetUploadTicket(context.Background(), filename, "")

	var verr ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "filename", verr.Field)
	assert.Empty(t, fs.puts, "nothing may be signed for a key the catalog cannot store")
	assert.Empty(t, fs.gets)

	// The longest accepted filename yields a key the catalog still takes.
	prefixLen := len(BuildStorageKey("", "uploads", time.Now()))
	ticket, err := u.GetUploadTicket(context.Background(), strings.Repeat("a", MaxStorageKeyLength-prefixLen), "")
	require.NoError(t, err)
	assert.Len(t, ticket.Key, MaxStorageKeyLength)

	catalog := New(&fakeRepo{}, fs, Options{})
	_, err = catalog.CreateAsset(context.Background(), Asset{Name: "x", Key: &ticket.Key}, nil)
	require.NoError(t, err)

	tooLong := ticket.Key + "x"
	_, err = catalog.CreateAsset(context.Background(), Asset{Name: "x", Key: &tooLong}, nil)
	require.ErrorAs(t, err, new(ErrValidation))
}

func TestGetDownloadURLRejectsOversizedKey(t *testing.T) {
	fs := &fakeStorage{}
	u := newUploadUsecase(fs)

	_, err := u.GetDownloadURL(context.Background(), strings.Repeat("k", MaxStorageKeyLength+1))
	require.ErrorAs(t, err, new(ErrValidation))
	assert.Empty(t, fs.gets)
}
