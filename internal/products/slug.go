package product

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
)

const maxSlugAttempts = 20

// Slugify lowercases the name, strips accents common in Spanish product
// names, and collapses everything non-alphanumeric into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if replacement, ok := accentReplacements[r]; ok {
			r = replacement
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

var accentReplacements = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ü': 'u', 'ñ': 'n',
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// uniqueSlug derives a slug from the product name, suffixing a counter until
// it finds one no other product claims. The uniqueness check races with
// concurrent creates; the slug column's unique index is the real guarantee.
func uniqueSlug(ctx context.Context, repo slugChecker, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name must contain at least one alphanumeric character")
	}

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		exists, err := repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug availability")
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not find a free slug for product name")
}
