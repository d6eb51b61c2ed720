package filestorage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/librarease/assetcatalog/internal/config"
	"github.com/librarease/assetcatalog/internal/usecase"
)

func checkIdentity(bucket, region string) error {
	var missing []string
	if strings.TrimSpace(region) == "" {
		missing = append(missing, "region")
	}
	if strings.TrimSpace(bucket) == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return usecase.ErrConfiguration{Missing: missing}
	}
	return nil
}

func presignTTL(ttl, def time.Duration) (time.Duration, error) {
	if ttl <= 0 {
		return def, nil
	}
	if ttl > config.MAX_PRESIGN_TTL {
		return 0, usecase.ErrValidation{
			Field:   "ttl",
			Message: fmt.Sprintf("presign ttl %s exceeds %s", ttl, config.MAX_PRESIGN_TTL),
		}
	}
	return ttl, nil
}

// escapeKey path-escapes every segment of an object key so keys holding
// literal '%' or spaces stay addressable in a plain URL.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + escapeKey(key)
}
