package database

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/librarease/assetcatalog/internal/usecase"
)

func tagNames(tags []usecase.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestResolveTagsDeduplicates(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	tags, err := s.ResolveTags(ctx, []string{"a", " a", "b", "", "   ", "a", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "B"}, tagNames(tags))
	assert.EqualValues(t, 3, countRows(t, db, &Tag{}, ""))

	again, err := s.ResolveTags(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, tagNames(again))
	assert.Equal(t, tags[1].ID, again[0].ID)
	assert.Equal(t, tags[0].ID, again[2].ID)
	assert.EqualValues(t, 4, countRows(t, db, &Tag{}, ""))
}

func TestResolveTagsEmpty(t *testing.T) {
	s, _ := newTestService(t)

	tags, err := s.ResolveTags(context.Background(), []string{" ", ""})
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCreateTagIsIdempotent(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	first, created, err := s.CreateTag(ctx, "poster")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.CreateTag(ctx, "poster")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countRows(t, db, &Tag{}, "name = ?", "poster"))
}

// The hook plays a concurrent writer that commits the same tag name right
// before our insert reaches the database.
func TestInsertTagRecoversFromConcurrentInsert(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	raced := uuid.Must(uuid.NewV7())
	var fired atomic.Bool
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:race", func(d *gorm.DB) {
		tag, ok := d.Statement.Dest.(*Tag)
		if !ok || tag.Name != "x" || !fired.CompareAndSwap(false, true) {
			return
		}
		now := time.Now()
		_, err := d.Statement.ConnPool.ExecContext(d.Statement.Context,
			"INSERT INTO tags (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
			raced, "x", now, now)
		require.NoError(t, err)
	}))

	a, err := s.CreateAsset(ctx, usecase.Asset{Name: "first"}, []string{"x"})
	require.NoError(t, err)

	require.True(t, fired.Load())
	require.Len(t, a.Tags, 1)
	assert.Equal(t, raced, a.Tags[0].ID)
	assert.EqualValues(t, 1, countRows(t, db, &Tag{}, "name = ?", "x"))
}

func TestRenameTag(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	red, _, err := s.CreateTag(ctx, "red")
	require.NoError(t, err)
	_, _, err = s.CreateTag(ctx, "blue")
	require.NoError(t, err)

	_, err = s.RenameTag(ctx, red.ID, "blue")
	var conflict usecase.ErrNameConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "blue", conflict.Name)

	same, err := s.RenameTag(ctx, red.ID, "red")
	require.NoError(t, err)
	assert.Equal(t, "red", same.Name)

	renamed, err := s.RenameTag(ctx, red.ID, "crimson")
	require.NoError(t, err)
	assert.Equal(t, red.ID, renamed.ID)
	assert.Equal(t, "crimson", renamed.Name)

	_, err = s.RenameTag(ctx, uuid.New(), "green")
	require.ErrorAs(t, err, new(usecase.ErrNotFound))
}

func TestListTagsSortedByName(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.ResolveTags(ctx, []string{"zebra", "apple", "Mango"})
	require.NoError(t, err)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mango", "apple", "zebra"}, tagNames(tags))
}

func TestDeleteTagCascadesAssociations(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	a1, err := s.CreateAsset(ctx, usecase.Asset{Name: "one"}, []string{"shared", "keep"})
	require.NoError(t, err)
	a2, err := s.CreateAsset(ctx, usecase.Asset{Name: "two"}, []string{"shared"})
	require.NoError(t, err)

	shared := a2.Tags[0]
	detail, err := s.GetTagByID(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a2.ID, a1.ID}, detail.AssetIDs)

	require.NoError(t, s.DeleteTag(ctx, shared.ID))

	assert.EqualValues(t, 0, countRows(t, db, &AssetTag{}, "tag_id = ?", shared.ID))

	got1, err := s.GetAssetByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tagNames(got1.Tags))

	got2, err := s.GetAssetByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.Empty(t, got2.Tags)

	err = s.DeleteTag(ctx, shared.ID)
	require.ErrorAs(t, err, new(usecase.ErrNotFound))

	_, err = s.GetTagByID(ctx, shared.ID)
	require.ErrorAs(t, err, new(usecase.ErrNotFound))
}
