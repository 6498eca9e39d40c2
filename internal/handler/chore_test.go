package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFamily(t *testing.T, db *sql.DB) (*model.Family, *model.User, *model.User) {
	t.Helper()
	family, parent, err := store.NewFamilyStore(db).Register("Smith", "hash", "Smith Parent", "🧑")
	if err != nil {
		t.Fatalf("register family: %v", err)
	}
	child, err := store.NewUserStore(db).Create(family.ID, "Bob", model.RoleChild, "🐣")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return family, parent, child
}

func jsonRequest(t *testing.T, method, path string, identity auth.Identity, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	return r.WithContext(auth.WithIdentity(r.Context(), identity))
}

// Business-rule failures are the client's problem; they must map to 4xx and
// stay out of the error log even when the store wraps the sentinel.
func TestCreateChoreUnknownAssigneeIsClientError(t *testing.T) {
	db := openTestDB(t)
	family, parent, _ := testFamily(t, db)

	var logBuf bytes.Buffer
	h := NewChoreHandler(store.NewChoreStore(db), nil, slog.New(slog.NewTextHandler(&logBuf, nil)))

	identity := auth.Identity{UserID: parent.ID, FamilyID: family.ID, Role: model.RoleParent}
	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, "POST", "/chores", identity, map[string]any{
		"title":     "Dishes",
		"points":    10,
		"assignees": []int64{99999},
	}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if strings.Contains(logBuf.String(), "level=ERROR") {
		t.Errorf("unknown assignee logged as error:\n%s", logBuf.String())
	}
}

func TestCompleteTwiceIsConflict(t *testing.T) {
	db := openTestDB(t)
	family, _, child := testFamily(t, db)
	cs := store.NewChoreStore(db)

	created, err := cs.Create(family.ID, "Dishes", "", 10, model.Schedule{}, "easy", nil, []int64{child.ID})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	var logBuf bytes.Buffer
	h := NewChoreHandler(cs, nil, slog.New(slog.NewTextHandler(&logBuf, nil)))
	identity := auth.Identity{UserID: child.ID, FamilyID: family.ID, Role: model.RoleChild}
	path := "/chores/" + strconv.FormatInt(created.ID, 10) + "/complete"

	first := httptest.NewRecorder()
	r := jsonRequest(t, "POST", path, identity, nil)
	r.SetPathValue("id", strconv.FormatInt(created.ID, 10))
	h.Complete(first, r)
	if first.Code != http.StatusCreated {
		t.Fatalf("first submit status = %d, want 201", first.Code)
	}

	second := httptest.NewRecorder()
	r = jsonRequest(t, "POST", path, identity, nil)
	r.SetPathValue("id", strconv.FormatInt(created.ID, 10))
	h.Complete(second, r)
	if second.Code != http.StatusConflict {
		t.Fatalf("second submit status = %d, want 409", second.Code)
	}
	if strings.Contains(logBuf.String(), "level=ERROR") {
		t.Errorf("repeat submission logged as error:\n%s", logBuf.String())
	}
}
