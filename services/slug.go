package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackSlug is used when a title has no characters that survive slugification
const fallbackSlug = "post"

// SlugExistsFunc reports whether a slug is already taken
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

var symbolReplacer = strings.NewReplacer("@", " at ")

// Slugify turns text into a lower-case, URL-safe string. Accents are stripped,
// other scripts are transliterated to ASCII, and every run of characters
// outside [a-z0-9] becomes a single hyphen. Leading and trailing hyphens are trimmed.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, symbolReplacer.Replace(text))
	if err != nil {
		stripped = text
	}
	ascii := strings.ToLower(unidecode.Unidecode(stripped))

	var b strings.Builder
	b.Grow(len(ascii))
	pendingDash := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// GenerateSlug returns the first candidate derived from text that exists
// reports as free. The candidates are base, base-1, base-2 and so on.
//
// Parameters:
//   - text: the source text, usually a post title
//   - exists: collision check, consulted once per candidate
//
// Returns:
//   - the free slug, or an error when exists fails or ctx is done
func GenerateSlug(ctx context.Context, text string, exists SlugExistsFunc) (string, error) {
	base := Slugify(text)
	if base == "" {
		base = fallbackSlug
	}

	for counter := 0; ; counter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := base
		if counter > 0 {
			candidate = base + "-" + strconv.Itoa(counter)
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
