package migrations

import (
	"strings"
	"testing"

	"github.com/medflow/medflow/internal/platform/db"
)

func TestFS_LoadsInOrder(t *testing.T) {
	migs, err := db.NewMigrator(nil, FS).LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"departments", "staff", "patients", "appointments"}
	if len(migs) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migs))
	}
	for i, table := range want {
		if migs[i].Version != i+1 {
			t.Errorf("migration %d has version %d", i, migs[i].Version)
		}
		if !strings.Contains(migs[i].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("migration %s does not create %s", migs[i].Name, table)
		}
	}
}

func TestFS_JSONBColumns(t *testing.T) {
	migs, err := db.NewMigrator(nil, FS).LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(migs[1].SQL, "schedule   JSONB") {
		t.Error("expected staff schedule to be JSONB")
	}
	if !strings.Contains(migs[2].SQL, "emergency_contact  JSONB") {
		t.Error("expected patient emergency contact to be JSONB")
	}
}
