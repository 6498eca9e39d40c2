package store

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRegisterFamily(t *testing.T) {
	db := openTestDB(t)
	family, parent := registerTestFamily(t, db, "Smiths")

	if family.Name != "Smiths" {
		t.Errorf("name = %q, want %q", family.Name, "Smiths")
	}
	if len(family.FamilyCode) != codeLength {
		t.Errorf("family code %q has length %d, want %d", family.FamilyCode, len(family.FamilyCode), codeLength)
	}
	for _, c := range family.FamilyCode {
		if !strings.ContainsRune(codeAlphabet, c) {
			t.Errorf("family code contains %q, not in alphabet", c)
		}
	}

	if parent.FamilyID != family.ID {
		t.Errorf("parent family_id = %d, want %d", parent.FamilyID, family.ID)
	}
	if parent.Role != "parent" {
		t.Errorf("parent role = %q, want parent", parent.Role)
	}
	if parent.Points != 0 {
		t.Errorf("parent points = %d, want 0", parent.Points)
	}
	if parent.Jars.Total() != 0 {
		t.Errorf("parent jars = %+v, want all zero", parent.Jars)
	}
}

func TestGetFamilyByCodeCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	family, _ := registerTestFamily(t, db, "Smiths")
	fs := NewFamilyStore(db)

	got, err := fs.GetByCode(strings.ToLower(family.FamilyCode))
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got == nil {
		t.Fatal("lowercased code did not match")
	}
	if got.ID != family.ID {
		t.Errorf("got family %d, want %d", got.ID, family.ID)
	}
}

func TestGetFamilyByCodeUnknown(t *testing.T) {
	db := openTestDB(t)
	registerTestFamily(t, db, "Smiths")
	fs := NewFamilyStore(db)

	got, err := fs.GetByCode("ZZZZZZ")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown code, got %+v", got)
	}
}

func TestFamilyJSONHidesPINHash(t *testing.T) {
	db := openTestDB(t)
	family, _ := registerTestFamily(t, db, "Smiths")

	data, err := json.Marshal(family)
	if err != nil {
		t.Fatalf("marshal family: %v", err)
	}
	if strings.Contains(string(data), "hash") || strings.Contains(string(data), "pin") {
		t.Errorf("serialized family leaks PIN hash: %s", data)
	}
}
