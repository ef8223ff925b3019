package product

import (
	"context"
	"errors"
	"strconv"
	"testing"

	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Papa Amarilla", "papa-amarilla"},
		{"  Ají Limo  ", "aji-limo"},
		{"Ñame fresco", "name-fresco"},
		{"Limón (malla x 1kg)", "limon-malla-x-1kg"},
		{"Café 250g", "cafe-250g"},
		{"---", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type fakeSlugChecker struct {
	taken map[string]bool
	err   error
}

func (f fakeSlugChecker) SlugExists(ctx context.Context, slug string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func TestUniqueSlugFirstCandidateFree(t *testing.T) {
	slug, err := uniqueSlug(context.Background(), fakeSlugChecker{}, "Papa Amarilla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slug != "papa-amarilla" {
		t.Fatalf("expected papa-amarilla got %q", slug)
	}
}

func TestUniqueSlugAppendsCounter(t *testing.T) {
	checker := fakeSlugChecker{taken: map[string]bool{
		"papa-amarilla":   true,
		"papa-amarilla-2": true,
	}}
	slug, err := uniqueSlug(context.Background(), checker, "Papa Amarilla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slug != "papa-amarilla-3" {
		t.Fatalf("expected papa-amarilla-3 got %q", slug)
	}
}

func TestUniqueSlugRejectsEmptyResult(t *testing.T) {
	_, err := uniqueSlug(context.Background(), fakeSlugChecker{}, "!!!")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUniqueSlugPropagatesStorageErrors(t *testing.T) {
	checker := fakeSlugChecker{err: errors.New("db down")}
	_, err := uniqueSlug(context.Background(), checker, "Papa Amarilla")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUniqueSlugGivesUpAfterMaxAttempts(t *testing.T) {
	taken := map[string]bool{"papa": true}
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken["papa"] = true
		taken["papa-"+strconv.Itoa(i)] = true
	}
	checker := fakeSlugChecker{taken: taken}
	_, err := uniqueSlug(context.Background(), checker, "Papa")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict after exhausting candidates, got %v", err)
	}
}
