package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
)

// openTestDB opens a migrated database on a per-test temp file. A file rather
// than :memory: because the connection pool would give each connection its own
// in-memory database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func registerTestFamily(t *testing.T, db *sql.DB, name string) (*model.Family, *model.User) {
	t.Helper()
	fs := NewFamilyStore(db)
	family, parent, err := fs.Register(name, "hash", name+" Parent", "🧑")
	if err != nil {
		t.Fatalf("register family: %v", err)
	}
	return family, parent
}

func createTestChild(t *testing.T, db *sql.DB, familyID int64, name string) *model.User {
	t.Helper()
	us := NewUserStore(db)
	child, err := us.Create(familyID, name, model.RoleChild, "🐣")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}
