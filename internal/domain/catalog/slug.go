package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugSeparators = regexp.MustCompile(`[\s_]+`)
var slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
var slugDashes = regexp.MustCompile(`-{2,}`)

// Slugify converts a display name into a URL-safe slug.
// Diacritics are stripped, whitespace becomes dashes, and anything
// outside [a-z0-9-] is dropped.
func Slugify(name string) (string, error) {
	// Decompose and strip combining marks (é -> e)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, name)
	if err != nil {
		ascii = name
	}

	s := strings.ToLower(strings.TrimSpace(ascii))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return "", shared.NewDomainError("INVALID_SLUG", "Name does not produce a valid slug")
	}
	return s, nil
}
