package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxTagNameLength = 64

type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated by GetTagByID only.
	AssetIDs []uuid.UUID
}

// NormalizeTagNames trims every name, drops blanks and exact duplicates,
// and keeps the first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func validateTagNames(names ...string) error {
	for _, n := range names {
		if n == "" {
			return ErrValidation{Field: "name", Message: "name is required"}
		}
		if utf8.RuneCountInString(n) > maxTagNameLength {
			return ErrValidation{Field: "name", Message: fmt.Sprintf("tag %q is longer than %d characters", n, maxTagNameLength)}
		}
	}
	return nil
}

func (u Usecase) ListTags(ctx context.Context) ([]Tag, error) {
	return u.repo.ListTags(ctx)
}

func (u Usecase) GetTagByID(ctx context.Context, id uuid.UUID) (Tag, error) {
	return u.repo.GetTagByID(ctx, id)
}

// ResolveTags returns one tag per distinct normalized name, creating the
// missing ones.
func (u Usecase) ResolveTags(ctx context.Context, names []string) ([]Tag, error) {
	names = NormalizeTagNames(names)
	if err := validateTagNames(names...); err != nil {
		return nil, err
	}
	return u.repo.ResolveTags(ctx, names)
}

// CreateTag is idempotent: the boolean reports whether a new row was made.
func (u Usecase) CreateTag(ctx context.Context, name string) (Tag, bool, error) {
	name = strings.TrimSpace(name)
	if err := validateTagNames(name); err != nil {
		return Tag{}, false, err
	}
	return u.repo.CreateTag(ctx, name)
}

func (u Usecase) RenameTag(ctx context.Context, id uuid.UUID, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateTagNames(name); err != nil {
		return Tag{}, err
	}
	return u.repo.RenameTag(ctx, id, name)
}

func (u Usecase) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return u.repo.DeleteTag(ctx, id)
}
