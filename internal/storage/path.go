package storage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidSegment reports whether s is safe to use as a single path segment.
func ValidSegment(s string) bool {
	return segmentPattern.MatchString(s)
}

// RandomID returns a short random token for object names.
func RandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ObjectPath builds "<namespace>/<kind>/<unixMillis>-<random>.<ext>".
func ObjectPath(namespace, kind, ext string, now time.Time, random string) string {
	return fmt.Sprintf("%s/%s/%d-%s.%s", namespace, kind, now.UnixMilli(), random, strings.TrimPrefix(ext, "."))
}

// SupabasePublicURL returns the public object URL for a path in a public bucket.
func SupabasePublicURL(baseURL, bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(bucket), path)
}

// PublicURL joins a CDN base URL and an object key.
func PublicURL(baseURL, key string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + key
}
