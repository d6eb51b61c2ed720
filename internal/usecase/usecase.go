package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Health() map[string]string
	Close() error

	ListAssets(context.Context, ListAssetsOption) ([]Asset, error)
	GetAssetByID(context.Context, uuid.UUID) (Asset, error)
	CreateAsset(context.Context, Asset, []string) (Asset, error)
	UpdateAsset(context.Context, uuid.UUID, UpdateAssetRequest) (Asset, error)
	DeleteAsset(context.Context, uuid.UUID) error

	ListTags(context.Context) ([]Tag, error)
	GetTagByID(context.Context, uuid.UUID) (Tag, error)
	ResolveTags(context.Context, []string) ([]Tag, error)
	CreateTag(context.Context, string) (Tag, bool, error)
	RenameTag(context.Context, uuid.UUID, string) (Tag, error)
	DeleteTag(context.Context, uuid.UUID) error
}

// FileStorageProvider signs single-object operations against the blob store.
// Implementations never touch the payload bytes.
type FileStorageProvider interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (PresignedURL, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (PresignedURL, error)
	PublicURL(key string) string
}

type Options struct {
	KeyPrefix   string
	UploadTTL   time.Duration
	DownloadTTL time.Duration
	// Now overrides the clock used for storage keys.
	Now func() time.Time
}

func New(repo Repository, fsp FileStorageProvider, opt Options) Usecase {
	return Usecase{
		repo:                repo,
		fileStorageProvider: fsp,
		keyBuilder:          KeyBuilder{Prefix: opt.KeyPrefix, Now: opt.Now},
		uploadTTL:           opt.UploadTTL,
		downloadTTL:         opt.DownloadTTL,
	}
}

type Usecase struct {
	repo                Repository
	fileStorageProvider FileStorageProvider

	keyBuilder  KeyBuilder
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
