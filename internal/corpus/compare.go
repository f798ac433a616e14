// Package corpus provides in-memory PNG/JPEG/WebP fixture builders and a
// JSON-aware equality comparator for tests, since this retrieval pack
// carries no on-disk sample corpus (spec.md §8: "JSON text compared as
// parsed trees; other text compared as bytes").
//
// Grounded on the teacher's own chunk/CRC-building helpers
// (core/image/image.go's writePNGChunk/crc32PNG, which already build PNG
// chunks by hand for its edit path) rather than a sample-file fixture
// directory, since no such directory exists in the retrieval pack.
package corpus

import (
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
)

// EqualText implements spec.md §8's JSON-aware equality rule: if both
// strings parse as JSON, compare their parsed trees; otherwise compare
// bytes.
func EqualText(a, b string) bool {
	if a == b {
		return true
	}
	var ta, tb any
	errA := json.Unmarshal([]byte(a), &ta)
	errB := json.Unmarshal([]byte(b), &tb)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(ta, tb)
}

// LooksLikeJSON is a cheap shape check for deciding whether to compare a
// field as JSON or plain text.
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
