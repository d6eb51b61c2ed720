package usecase

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultContentType = "application/octet-stream"

type PresignedURL struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

type UploadTicket struct {
	Key         string
	ContentType string
	Upload      PresignedURL
	Download    PresignedURL
	PublicURL   string
}

// GetUploadTicket derives the storage key for filename and signs a PUT for
// it together with an independent, shorter lived GET for previews. Nothing
// is written to the bucket.
func (u Usecase) GetUploadTicket(ctx context.Context, filename, contentType string) (UploadTicket, error) {
	if strings.TrimSpace(filename) == "" {
		return UploadTicket{}, ErrValidation{Field: "filename", Message: "filename is required"}
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = detectContentType(filename)
	}

	var (
		key     = u.keyBuilder.Build(filename)
		ticket  = UploadTicket{Key: key, ContentType: contentType}
		g, gctx = errgroup.WithContext(ctx)
	)

	if len(key) > MaxStorageKeyLength {
		return UploadTicket{}, ErrValidation{
			Field:   "filename",
			Message: fmt.Sprintf("filename is too long: storage key would exceed %d bytes", MaxStorageKeyLength),
		}
	}

	g.Go(func() error {
		put, err := u.fileStorageProvider.PresignPut(gctx, key, contentType, u.uploadTTL)
		ticket.Upload = put
		return err
	})
	g.Go(func() error {
		get, err := u.fileStorageProvider.PresignGet(gctx, key, u.downloadTTL)
		ticket.Download = get
		return err
	})
	if err := g.Wait(); err != nil {
		return UploadTicket{}, err
	}

	ticket.PublicURL = u.fileStorageProvider.PublicURL(key)
	return ticket, nil
}

func (u Usecase) GetDownloadURL(ctx context.Context, key string) (PresignedURL, error) {
	if strings.TrimSpace(key) == "" {
		return PresignedURL{}, ErrValidation{Field: "key", Message: "key is required"}
	}
	if err := validateKey(key); err != nil {
		return PresignedURL{}, err
	}
	return u.fileStorageProvider.PresignGet(ctx, key, u.downloadTTL)
}

func validateKey(key string) error {
	if len(key) > MaxStorageKeyLength {
		return ErrValidation{
			Field:   "key",
			Message: fmt.Sprintf("key exceeds %d bytes", MaxStorageKeyLength),
		}
	}
	return nil
}

func detectContentType(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return defaultContentType
	}
	ct := mime.TypeByExtension(strings.ToLower(ext))
	if ct == "" {
		return defaultContentType
	}
	return ct
}
