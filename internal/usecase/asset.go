package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset is a catalog entry. Key is the authoritative locator; URL is only
// stored when a client registers an external URL without a key, otherwise
// it is derived from Key on read.
type Asset struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Key         *string
	URL         *string
	ContentType *string
	Tags        []Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListAssetsOption struct {
	Tag    string
	Limit  int
	Offset int
}

// UpdateAssetRequest leaves nil fields untouched. A non-nil Tags replaces
// the whole tag set, an empty slice clears it.
type UpdateAssetRequest struct {
	Name        *string
	Description *string
	Tags        *[]string
}

func (u Usecase) ListAssets(ctx context.Context, opt ListAssetsOption) ([]Asset, error) {
	opt.Tag = strings.TrimSpace(opt.Tag)
	assets, err := u.repo.ListAssets(ctx, opt)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		u.resolveLocator(&assets[i])
	}
	return assets, nil
}

func (u Usecase) GetAssetByID(ctx context.Context, id uuid.UUID) (Asset, error) {
	asset, err := u.repo.GetAssetByID(ctx, id)
	if err != nil {
		return Asset{}, err
	}
	u.resolveLocator(&asset)
	return asset, nil
}

func (u Usecase) CreateAsset(ctx context.Context, asset Asset, tagNames []string) (Asset, error) {
	asset.Name = strings.TrimSpace(asset.Name)
	if asset.Name == "" {
		return Asset{}, ErrValidation{Field: "name", Message: "name is required"}
	}
	asset.Description = trimOptional(asset.Description)
	asset.Key = trimOptional(asset.Key)
	asset.URL = trimOptional(asset.URL)
	asset.ContentType = trimOptional(asset.ContentType)
	if asset.Key != nil {
		if err := validateKey(*asset.Key); err != nil {
			return Asset{}, err
		}
		asset.URL = nil
	}

	tagNames = NormalizeTagNames(tagNames)
	if err := validateTagNames(tagNames...); err != nil {
		return Asset{}, err
	}

	created, err := u.repo.CreateAsset(ctx, asset, tagNames)
	if err != nil {
		return Asset{}, err
	}
	u.resolveLocator(&created)
	return created, nil
}

func (u Usecase) UpdateAsset(ctx context.Context, id uuid.UUID, req UpdateAssetRequest) (Asset, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Asset{}, ErrValidation{Field: "name", Message: "name is required"}
		}
		req.Name = &name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		req.Description = &desc
	}
	if req.Tags != nil {
		tags := NormalizeTagNames(*req.Tags)
		if err := validateTagNames(tags...); err != nil {
			return Asset{}, err
		}
		req.Tags = &tags
	}

	updated, err := u.repo.UpdateAsset(ctx, id, req)
	if err != nil {
		return Asset{}, err
	}
	u.resolveLocator(&updated)
	return updated, nil
}

func (u Usecase) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return u.repo.DeleteAsset(ctx, id)
}

func (u Usecase) resolveLocator(a *Asset) {
	if a.Key == nil || a.URL != nil || u.fileStorageProvider == nil {
		return
	}
	url := u.fileStorageProvider.PublicURL(*a.Key)
	a.URL = &url
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
