package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brewlinehq/brewline-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_carts_orders_deliveries.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX ux_cart_items_cart_coffee ON cart_items (cart_id, coffee_id)",
		"CREATE UNIQUE INDEX ux_deliveries_order_id ON deliveries (order_id)",
		"CHECK (quantity >= 1)",
		"CONSTRAINT ck_orders_delivery_address CHECK (order_type <> 'delivery' OR delivery_address IS NOT NULL)",
		"DROP TABLE deliveries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationGuardsDuplicateEvents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "ux_outbox_events_event_aggregate") {
		t.Error("missing unique event/aggregate index")
	}
}
