package database

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/librarease/assetcatalog/internal/usecase"
)

type Asset struct {
	ID          uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	Name        string    `gorm:"column:name;type:varchar(255);not null"`
	Description *string   `gorm:"column:description;type:text"`
	Key         *string   `gorm:"column:storage_key;size:1024"`
	URL         *string   `gorm:"column:url;type:varchar(2048)"`
	ContentType *string   `gorm:"column:content_type;type:varchar(255)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`

	Tags []Tag `gorm:"many2many:asset_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID != uuid.Nil {
		return nil
	}
	// v7 ids are time ordered, so id DESC is newest first.
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// AssetTag is the join row of asset_tags, written explicitly so tag
// replacement stays inside the caller's transaction.
type AssetTag struct {
	AssetID uuid.UUID `gorm:"column:asset_id;primaryKey;type:uuid"`
	TagID   uuid.UUID `gorm:"column:tag_id;primaryKey;type:uuid"`
}

func (AssetTag) TableName() string {
	return "asset_tags"
}

func (a Asset) ConvertToUsecase() usecase.Asset {
	ua := usecase.Asset{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Key:         a.Key,
		URL:         a.URL,
		ContentType: a.ContentType,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	for _, t := range a.Tags {
		ua.Tags = append(ua.Tags, t.ConvertToUsecase())
	}
	slices.SortFunc(ua.Tags, func(x, y usecase.Tag) int {
		return strings.Compare(x.Name, y.Name)
	})
	return ua
}

func assetNotFound(id uuid.UUID) usecase.ErrNotFound {
	return usecase.ErrNotFound{
		ID:      id,
		Code:    "asset_not_found",
		Message: "asset " + id.String() + " not found",
	}
}

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}

func (s *service) ListAssets(ctx context.Context, opt usecase.ListAssetsOption) ([]usecase.Asset, error) {
	var assets []Asset

	db := preloadTags(s.db.WithContext(ctx).Model(&Asset{}))

	if opt.Tag != "" {
		db = db.Where("assets.id IN (?)", s.db.
			WithContext(ctx).
			Model(&AssetTag{}).
			Select("asset_tags.asset_id").
			Joins("JOIN tags ON tags.id = asset_tags.tag_id").
			Where("tags.name = ?", opt.Tag))
	}
	if opt.Limit > 0 {
		db = db.Limit(opt.Limit)
	}
	if opt.Offset > 0 {
		db = db.Offset(opt.Offset)
	}

	if err := db.
		Order("assets.id DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}

	list := make([]usecase.Asset, 0, len(assets))
	for _, a := range assets {
		list = append(list, a.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) GetAssetByID(ctx context.Context, id uuid.UUID) (usecase.Asset, error) {
	a, err := getAsset(s.db.WithContext(ctx), id)
	if err != nil {
		return usecase.Asset{}, err
	}
	return a.ConvertToUsecase(), nil
}

// CreateAsset resolves tags, writes the asset row and its association rows
// in one transaction. Tags created here roll back with the asset.
func (s *service) CreateAsset(ctx context.Context, ua usecase.Asset, tagNames []string) (usecase.Asset, error) {
	var created Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}

		a := Asset{
			Name:        ua.Name,
			Description: ua.Description,
			Key:         ua.Key,
			URL:         ua.URL,
			ContentType: ua.ContentType,
		}
		if err := tx.Omit(clause.Associations).Create(&a).Error; err != nil {
			return err
		}
		if err := linkTags(tx, a.ID, tags); err != nil {
			return err
		}

		created, err = getAsset(tx, a.ID)
		return err
	})
	if err != nil {
		return usecase.Asset{}, err
	}
	return created.ConvertToUsecase(), nil
}

// UpdateAsset patches scalar fields and, when req.Tags is set, overwrites the
// tag set.
func (s *service) UpdateAsset(ctx context.Context, id uuid.UUID, req usecase.UpdateAssetRequest) (usecase.Asset, error) {
	var updated Asset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getAsset(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{"updated_at": time.Now()}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			var desc *string
			if *req.Description != "" {
				desc = req.Description
			}
			updates["description"] = desc
		}
		if err := tx.Model(&Asset{ID: current.ID}).Updates(updates).Error; err != nil {
			return err
		}

		if req.Tags != nil {
			tags, err := resolveTags(tx, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Where("asset_id = ?", id).Delete(&AssetTag{}).Error; err != nil {
				return err
			}
			if err := linkTags(tx, id, tags); err != nil {
				return err
			}
		}

		updated, err = getAsset(tx, id)
		return err
	})
	if err != nil {
		return usecase.Asset{}, err
	}
	return updated.ConvertToUsecase(), nil
}

// DeleteAsset removes the asset and its association rows. Tags and the
// stored object are kept.
func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id).Delete(&AssetTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return assetNotFound(id)
		}
		return nil
	})
}

func getAsset(db *gorm.DB, id uuid.UUID) (Asset, error) {
	var a Asset
	if err := preloadTags(db).Take(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Asset{}, assetNotFound(id)
		}
		return Asset{}, err
	}
	return a, nil
}

func linkTags(tx *gorm.DB, assetID uuid.UUID, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	links := make([]AssetTag, 0, len(tags))
	for _, t := range tags {
		links = append(links, AssetTag{AssetID: assetID, TagID: t.ID})
	}
	return tx.Create(&links).Error
}
