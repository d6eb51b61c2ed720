package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeTagNames(t *testing.T) {
	got := NormalizeTagNames([]string{" b", "a", "", "   ", "b", "A", "a ", "\tc\n"})
	assert.Equal(t, []string{"b", "a", "A", "c"}, got)

	assert.Empty(t, NormalizeTagNames(nil))
}

func TestCreateAssetValidatesName(t *testing.T) {
	repo := &fakeRepo{}
	u := New(repo, &fakeStorage{}, Options{})

	_, err := u.CreateAsset(context.Background(), Asset{Name: "  "}, []string{"a"})
	var verr ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name is required", verr.Error())
	assert.Nil(t, repo.createdTags)
}

func TestCreateAssetNormalizesInput(t *testing.T) {
	repo := &fakeRepo{}
	u := New(repo, &fakeStorage{}, Options{})

	a, err := u.CreateAsset(context.Background(), Asset{
		Name:        "  Logo ",
		Description: ptr("   "),
		Key:         ptr(" 2025/01/01/logo.svg "),
		URL:         ptr("https://old.test/logo.svg"),
	}, []string{"brand", " brand", "", "svg"})
	require.NoError(t, err)

	assert.Equal(t, "Logo", repo.created.Name)
	assert.Nil(t, repo.created.Description)
	assert.Equal(t, "2025/01/01/logo.svg", *repo.created.Key)
	assert.Nil(t, repo.created.URL, "key wins over url")
	assert.Equal(t, []string{"brand", "svg"}, repo.createdTags)

	require.NotNil(t, a.URL)
	assert.Equal(t, "https://cdn.test/2025/01/01/logo.svg", *a.URL)
}

func TestListAssetsDerivesURLFromKey(t *testing.T) {
	u := New(&fakeRepo{}, &fakeStorage{}, Options{})

	assets, err := u.ListAssets(context.Background(), ListAssetsOption{})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "https://cdn.test/2025/01/01/a.png", *assets[0].URL)
	assert.Equal(t, "https://elsewhere.test/b.png", *assets[1].URL)
}

func TestUpdateAsset(t *testing.T) {
	repo := &fakeRepo{}
	u := New(repo, &fakeStorage{}, Options{})

	_, err := u.UpdateAsset(context.Background(), uuid.New(), UpdateAssetRequest{Name: ptr(" ")})
	require.ErrorAs(t, err, new(ErrValidation))

	_, err = u.UpdateAsset(context.Background(), uuid.New(), UpdateAssetRequest{
		Name: ptr(" renamed "),
		Tags: &[]string{"x", "x ", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", *repo.updateReq.Name)
	assert.Equal(t, []string{"x"}, *repo.updateReq.Tags)
}

func TestTagOperationsValidateName(t *testing.T) {
	repo := &fakeRepo{}
	u := New(repo, &fakeStorage{}, Options{})
	ctx := context.Background()

	_, _, err := u.CreateTag(ctx, " ")
	require.ErrorAs(t, err, new(ErrValidation))
	_, err = u.RenameTag(ctx, uuid.New(), "")
	require.ErrorAs(t, err, new(ErrValidation))

	_, created, err := u.CreateTag(ctx, " blue ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "blue", repo.tagName)

	_, err = u.ResolveTags(ctx, []string{"a", " a", "b", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, repo.resolved)
}

func TestTagNamesAreBounded(t *testing.T) {
	repo := &fakeRepo{}
	u := New(repo, &fakeStorage{}, Options{})
	ctx := context.Background()
	long := strings.Repeat("x", 65)

	_, _, err := u.CreateTag(ctx, long)
	require.ErrorAs(t, err, new(ErrValidation))

	_, err = u.CreateAsset(ctx, Asset{Name: "a"}, []string{"ok", long})
	require.ErrorAs(t, err, new(ErrValidation))
	assert.Empty(t, repo.created.Name, "repository must not be reached")

	_, _, err = u.CreateTag(ctx, strings.Repeat("é", 64))
	require.NoError(t, err)
}
