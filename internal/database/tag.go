package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/librarease/assetcatalog/internal/usecase"
)

type Tag struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	Name      string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex:idx_tags_name"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (t Tag) ConvertToUsecase() usecase.Tag {
	return usecase.Tag{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tagNotFound(id uuid.UUID) usecase.ErrNotFound {
	return usecase.ErrNotFound{
		ID:      id,
		Code:    "tag_not_found",
		Message: "tag " + id.String() + " not found",
	}
}

func (s *service) ListTags(ctx context.Context) ([]usecase.Tag, error) {
	var tags []Tag
	if err := s.db.
		WithContext(ctx).
		Order("name ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}

	list := make([]usecase.Tag, 0, len(tags))
	for _, t := range tags {
		list = append(list, t.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) GetTagByID(ctx context.Context, id uuid.UUID) (usecase.Tag, error) {
	var tag Tag
	if err := s.db.
		WithContext(ctx).
		Take(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.Tag{}, tagNotFound(id)
		}
		return usecase.Tag{}, err
	}

	var assetIDs []uuid.UUID
	if err := s.db.
		WithContext(ctx).
		Model(&AssetTag{}).
		Where("tag_id = ?", id).
		Order("asset_id DESC").
		Pluck("asset_id", &assetIDs).Error; err != nil {
		return usecase.Tag{}, err
	}

	ut := tag.ConvertToUsecase()
	ut.AssetIDs = assetIDs
	return ut, nil
}

func (s *service) ResolveTags(ctx context.Context, names []string) ([]usecase.Tag, error) {
	var tags []Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tags, err = resolveTags(tx, names)
		return err
	})
	if err != nil {
		return nil, err
	}

	list := make([]usecase.Tag, 0, len(tags))
	for _, t := range tags {
		list = append(list, t.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) CreateTag(ctx context.Context, name string) (usecase.Tag, bool, error) {
	var (
		tag     Tag
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).Take(&tag).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tag, created, err = insertTag(tx, name)
		return err
	})
	if err != nil {
		return usecase.Tag{}, false, err
	}
	return tag.ConvertToUsecase(), created, nil
}

func (s *service) RenameTag(ctx context.Context, id uuid.UUID, name string) (usecase.Tag, error) {
	var tag Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tagNotFound(id)
			}
			return err
		}
		if tag.Name == name {
			return nil
		}

		var taken int64
		if err := tx.Model(&Tag{}).
			Where("name = ? AND id <> ?", name, id).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return usecase.ErrNameConflict{Name: name}
		}

		if err := tx.Model(&tag).Update("name", name).Error; err != nil {
			if isUniqueViolation(err) {
				return usecase.ErrNameConflict{Name: name}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return usecase.Tag{}, err
	}
	return tag.ConvertToUsecase(), nil
}

// DeleteTag removes the tag and every association row pointing at it.
// Assets and stored objects are left alone.
func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&AssetTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tagNotFound(id)
		}
		return nil
	})
}

// resolveTags returns one Tag per distinct normalized name, in input order,
// creating missing rows on tx. It must run inside the caller's transaction.
func resolveTags(tx *gorm.DB, names []string) ([]Tag, error) {
	names = usecase.NormalizeTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	var existing []Tag
	if err := tx.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]Tag, len(existing))
	for _, t := range existing {
		byName[t.Name] = t
	}

	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			tags = append(tags, t)
			continue
		}
		t, _, err := insertTag(tx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// insertTag creates a tag or, when a concurrent writer committed the same
// name first, converges on that row. The insert runs in a savepoint so a
// unique violation never aborts the enclosing Postgres transaction.
func insertTag(tx *gorm.DB, name string) (Tag, bool, error) {
	tag := Tag{Name: name}
	var inserted bool

	err := tx.Transaction(func(sp *gorm.DB) error {
		res := sp.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&tag)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil && !isUniqueViolation(err) {
		return Tag{}, false, err
	}
	if inserted {
		return tag, true, nil
	}

	var current Tag
	if err := tx.Where("name = ?", name).Take(&current).Error; err != nil {
		return Tag{}, false, err
	}
	return current, false, nil
}
