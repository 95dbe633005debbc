package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/merchlane/merchportal-backend/pkg/migrate"
)

func TestInitSchemaMigrationContainsTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE user_role AS ENUM",
		"CREATE TYPE group_order_status AS ENUM",
		"CREATE TYPE participant_status AS ENUM",
		"CREATE TYPE distribution_status AS ENUM",
		"CREATE TABLE departments",
		"CREATE TABLE users",
		"CREATE TABLE products",
		"CREATE TABLE group_orders",
		"CREATE TABLE group_order_items",
		"CREATE TABLE group_order_participants",
		"CREATE TABLE distribution_items",
		"CREATE TABLE cart_records",
		"CREATE TABLE cart_items",
		"CREATE TABLE wishlist_items",
		"CREATE TABLE reviews",
		"CREATE TABLE outbox_events",
		"CREATE UNIQUE INDEX cart_records_user_active_key",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}
