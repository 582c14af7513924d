package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oduntan/giftregistry-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitMigrationContainsCoreConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE transactions",
		"txn_no text NOT NULL UNIQUE",
		"provider_reference text UNIQUE",
		"payment_status text NOT NULL DEFAULT 'unpaid'",
		"CONSTRAINT discounts_amount_or_percentage CHECK",
		"CREATE UNIQUE INDEX idx_registry_products_pair ON registry_products (registry_id, product_id)",
		"order_number text NOT NULL UNIQUE",
		"CHECK (quantity > 0)",
		"CHECK (amount_kobo > 0)",
		"DROP TABLE IF EXISTS transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
