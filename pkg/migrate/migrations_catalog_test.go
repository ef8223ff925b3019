package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/feriaverde/catalog-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_slug",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at_id",
		"version INTEGER NOT NULL DEFAULT 1",
		"discount_percent >= 0 AND discount_percent <= 90",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestVariantsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_product_variants_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_variants",
		"REFERENCES products (id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_sort",
		"unit IN ('g', 'kg', 'ml', 'l', 'und')",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
