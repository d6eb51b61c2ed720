package usecase

import (
	"fmt"
	"strings"
	"time"
)

// MaxStorageKeyLength bounds a storage key in bytes. Keys the broker issues,
// keys the catalog stores and the storage_key column share it.
const MaxStorageKeyLength = 1024

// KeyBuilder binds a prefix and a clock so callers only pass the filename.
type KeyBuilder struct {
	Prefix string
	Now    func() time.Time
}

func (b KeyBuilder) Build(filename string) string {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return BuildStorageKey(filename, b.Prefix, now())
}

// BuildStorageKey derives the object key for an upload:
//
//	[prefix/]YYYY/MM/DD/<percent-encoded filename>
//
// The result only depends on its inputs, so the same filename uploaded twice
// on the same UTC day maps to the same key and the second upload overwrites
// the first. Callers that need distinct objects must disambiguate the
// filename themselves.
func BuildStorageKey(filename, prefix string, now time.Time) string {
	now = now.UTC()
	key := fmt.Sprintf("%04d/%02d/%02d/%s", now.Year(), int(now.Month()), now.Day(), escapeFilename(filename))

	if p := strings.Trim(prefix, "/ "); p != "" {
		return p + "/" + key
	}
	return key
}

// escapeFilename keeps RFC 3986 unreserved characters and percent-encodes
// every other byte, slashes included, so the name stays one path segment.
// The names "." and ".." are encoded in full.
func escapeFilename(s string) string {
	const hex = "0123456789ABCDEF"

	// A bare dot segment would be collapsed by URL normalization.
	dotSegment := s == "." || s == ".."

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) && !dotSegment {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
