package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// ErrEmptyPath is returned when an object operation is attempted without a key.
var ErrEmptyPath = errors.New("storage: empty object path")

// ObjectStore is the file storage backend holding uploaded study material.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) error
	Remove(ctx context.Context, path string) error
	PublicURL(path string) string
}

var publicSegment = regexp.MustCompile(`/object/public/([^/?#]+)/([^?#]+)`)

// ObjectPathFromURL recovers the object key from a public URL of the form
// .../object/public/<bucket>/<path>. When the URL does not match the bucket,
// fallback is returned.
func ObjectPathFromURL(publicURL, bucket, fallback string) string {
	m := publicSegment.FindStringSubmatch(publicURL)
	if m == nil || (bucket != "" && m[1] != bucket) {
		return fallback
	}
	decoded, err := url.PathUnescape(m[2])
	if err != nil {
		return m[2]
	}
	return decoded
}

// escapePath escapes each segment of an object key for use in a URL path.
func escapePath(path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
