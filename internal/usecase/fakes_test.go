package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeStorage struct {
	mu   sync.Mutex
	puts []string
	gets []string
	err  error
}

func (f *fakeStorage) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (PresignedURL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return PresignedURL{}, f.err
	}
	f.puts = append(f.puts, key)
	return PresignedURL{
		URL:       fmt.Sprintf("https://signed.test/%s?op=put&ttl=%s", key, ttl),
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: time.Unix(0, 0).Add(ttl),
	}, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (PresignedURL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return PresignedURL{}, f.err
	}
	f.gets = append(f.gets, key)
	return PresignedURL{
		URL:       fmt.Sprintf("https://signed.test/%s?op=get&ttl=%s", key, ttl),
		Method:    "GET",
		ExpiresAt: time.Unix(0, 0).Add(ttl),
	}, nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// fakeRepo records what reaches the repository layer.
type fakeRepo struct {
	Repository

	created     Asset
	createdTags []string
	updateReq   UpdateAssetRequest
	resolved    []string
	tagName     string
}

func (r *fakeRepo) CreateAsset(_ context.Context, a Asset, tags []string) (Asset, error) {
	r.created = a
	r.createdTags = tags
	a.ID = uuid.New()
	for _, n := range tags {
		a.Tags = append(a.Tags, Tag{ID: uuid.New(), Name: n})
	}
	return a, nil
}

func (r *fakeRepo) UpdateAsset(_ context.Context, id uuid.UUID, req UpdateAssetRequest) (Asset, error) {
	r.updateReq = req
	return Asset{ID: id}, nil
}

func (r *fakeRepo) ListAssets(context.Context, ListAssetsOption) ([]Asset, error) {
	key := "2025/01/01/a.png"
	ext := "https://elsewhere.test/b.png"
	return []Asset{
		{ID: uuid.New(), Name: "a", Key: &key},
		{ID: uuid.New(), Name: "b", URL: &ext},
	}, nil
}

func (r *fakeRepo) ResolveTags(_ context.Context, names []string) ([]Tag, error) {
	r.resolved = names
	return nil, nil
}

func (r *fakeRepo) CreateTag(_ context.Context, name string) (Tag, bool, error) {
	r.tagName = name
	return Tag{ID: uuid.New(), Name: name}, true, nil
}

func (r *fakeRepo) RenameTag(_ context.Context, id uuid.UUID, name string) (Tag, error) {
	r.tagName = name
	return Tag{ID: id, Name: name}, nil
}
