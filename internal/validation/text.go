package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Key returns the case-folded comparison key for a human-readable unique
// field, so "Café", "CAFÉ" and "café" collide.
func Key(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Slugify derives a URL slug: diacritics stripped, lowercase ASCII
// alphanumerics separated by single dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if len(slug) > 120 {
		return errors.New("slug is too long (max 120 characters)")
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("slug may only contain lowercase letters, digits and single dashes")
	}
	return nil
}

// ValidateTitle validates a display name or title
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("title is required")
	}

	if len([]rune(trimmed)) > 200 {
		return errors.New("title is too long (max 200 characters)")
	}

	return nil
}
