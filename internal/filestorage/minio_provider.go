package filestorage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/librarease/assetcatalog/internal/config"
	"github.com/librarease/assetcatalog/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage signs against any S3 compatible endpoint. The region is
// pinned so signing never needs a bucket location lookup.
type MinIOStorage struct {
	client     *minio.Client
	bucket     string
	region     string
	publicBase string
	now        func() time.Time
}

func NewMinIOStorage(endpoint, accessKeyID, secretAccessKey string, useSSL bool, bucket, region, publicBase string) (*MinIOStorage, error) {
	if err := checkIdentity(bucket, region); err != nil {
		return nil, err
	}
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIOStorage{
		client:     m,
		bucket:     bucket,
		region:     region,
		publicBase: publicBase,
		now:        time.Now,
	}, nil
}

func (f *MinIOStorage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (usecase.PresignedURL, error) {
	if err := checkIdentity(f.bucket, f.region); err != nil {
		return usecase.PresignedURL{}, err
	}
	ttl, err := presignTTL(ttl, config.DEFAULT_UPLOAD_URL_TTL)
	if err != nil {
		return usecase.PresignedURL{}, err
	}

	h := make(http.Header)
	h.Set("Content-Type", contentType)

	issued := f.now()
	u, err := f.client.PresignHeader(ctx, http.MethodPut, f.bucket, key, ttl, nil, h)
	if err != nil {
		return usecase.PresignedURL{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return usecase.PresignedURL{
		URL:       u.String(),
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: issued.Add(ttl),
	}, nil
}

func (f *MinIOStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (usecase.PresignedURL, error) {
	if err := checkIdentity(f.bucket, f.region); err != nil {
		return usecase.PresignedURL{}, err
	}
	ttl, err := presignTTL(ttl, config.DEFAULT_DOWNLOAD_URL_TTL)
	if err != nil {
		return usecase.PresignedURL{}, err
	}

	issued := f.now()
	u, err := f.client.PresignedGetObject(ctx, f.bucket, key, ttl, nil)
	if err != nil {
		return usecase.PresignedURL{}, fmt.Errorf("presign get %s: %w", key, err)
	}

	return usecase.PresignedURL{
		URL:       u.String(),
		Method:    http.MethodGet,
		ExpiresAt: issued.Add(ttl),
	}, nil
}

func (f *MinIOStorage) PublicURL(key string) string {
	if f.publicBase != "" {
		return joinURL(f.publicBase, key)
	}
	return joinURL(fmt.Sprintf("%s/%s", f.client.EndpointURL(), f.bucket), key)
}
