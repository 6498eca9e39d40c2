package store

import (
	"testing"

	"github.com/dukerupert/hearth/internal/model"
)

func TestChatChronologicalOrder(t *testing.T) {
	db := openTestDB(t)
	family, parent := registerTestFamily(t, db, "Smiths")
	cs := NewChatStore(db)

	for _, content := range []string{"A", "B", "C"} {
		if _, err := cs.Create(family.ID, parent.ID, content, "text", nil); err != nil {
			t.Fatalf("create message %q: %v", content, err)
		}
	}

	messages, err := cs.ListRecent(family.ID, 50)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(messages))
	}
	for i, want := range []string{"A", "B", "C"} {
		if messages[i].Content != want {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].Content, want)
		}
	}
}

func TestChatHistoryLimit(t *testing.T) {
	db := openTestDB(t)
	family, parent := registerTestFamily(t, db, "Smiths")
	cs := NewChatStore(db)

	for i := 0; i < 60; i++ {
		if _, err := cs.Create(family.ID, parent.ID, "msg", "text", nil); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	messages, err := cs.ListRecent(family.ID, 50)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 50 {
		t.Fatalf("messages = %d, want 50", len(messages))
	}
	// The 50 newest survive: ids 11..60 in chronological order.
	if messages[0].ID != messages[49].ID-49 {
		t.Errorf("window ids %d..%d not contiguous", messages[0].ID, messages[49].ID)
	}
	if messages[0].ID <= 10 {
		t.Errorf("oldest kept message id = %d, oldest 10 should be dropped", messages[0].ID)
	}
}

func TestChatScopedToFamily(t *testing.T) {
	db := openTestDB(t)
	family, parent := registerTestFamily(t, db, "Smiths")
	other, otherParent := registerTestFamily(t, db, "Jones")
	cs := NewChatStore(db)

	if _, err := cs.Create(family.ID, parent.ID, "hello smiths", "text", nil); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if _, err := cs.Create(other.ID, otherParent.ID, "hello joneses", "text", nil); err != nil {
		t.Fatalf("create message: %v", err)
	}

	messages, err := cs.ListRecent(family.ID, 50)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	if messages[0].Content != "hello smiths" {
		t.Errorf("content = %q", messages[0].Content)
	}
}

func TestChatAttachmentsAndSender(t *testing.T) {
	db := openTestDB(t)
	family, parent := registerTestFamily(t, db, "Smiths")
	cs := NewChatStore(db)

	created, err := cs.Create(family.ID, parent.ID, "", "image", model.StringList{"a.jpg", "b.jpg"})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if created.User == nil || created.User.ID != parent.ID {
		t.Errorf("sender not attached on create")
	}

	messages, err := cs.ListRecent(family.ID, 50)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	got := messages[0]
	if len(got.Attachments) != 2 || got.Attachments[0] != "a.jpg" {
		t.Errorf("attachments = %v, want [a.jpg b.jpg]", got.Attachments)
	}
	if got.User == nil || got.User.Name != parent.Name {
		t.Errorf("sender not attached on list")
	}
}
