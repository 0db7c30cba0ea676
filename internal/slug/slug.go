package slug

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// MaxProbes bounds sequential uniqueness probing before falling back to a
// random suffix, so a pathological number of collisions cannot loop forever.
const MaxProbes = 50

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Make derives a URL-safe slug from a post title: lowercase, trimmed, special
// characters stripped, runs of whitespace/underscores/hyphens collapsed into a
// single hyphen, leading and trailing hyphens removed.
//
// A title with no usable characters yields an empty slug; uniqueness probing
// still applies to it unchanged.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonWord.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(slug string) (bool, error)

// Unique returns base if unused, otherwise probes base-1, base-2, ... up to
// MaxProbes. Past the bound it appends a random hex suffix instead of probing
// further. The check-then-insert sequence can still race with a concurrent
// writer; the store's unique constraint on slug is the backstop.
func Unique(base string, exists ExistsFunc) (string, error) {
	candidate := base
	for i := 1; i <= MaxProbes; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", base, hex.EncodeToString(buf)), nil
}
