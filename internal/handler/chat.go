package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

const chatHistoryLimit = 50

type ChatHandler struct {
	chatStore *store.ChatStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewChatHandler(cs *store.ChatStore, hub *websocket.Hub, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chatStore: cs, hub: hub, logger: logger}
}

// List returns the family's last 50 messages, oldest first.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatStore.ListRecent(auth.FamilyID(r.Context()), chatHistoryLimit)
	if err != nil {
		h.logger.Error("list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// Create posts a message to the family chat and fans it out to connected
// clients. A message may be attachments-only, but not fully empty.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	if !identity.HasUser() {
		writeError(w, http.StatusForbidden, "a signed-in member is required")
		return
	}

	var req struct {
		Content     string           `json:"content"`
		Type        string           `json:"type"`
		Attachments model.StringList `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && len(req.Attachments) == 0 {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Type == "" {
		req.Type = "text"
	}

	message, err := h.chatStore.Create(identity.FamilyID, identity.UserID, req.Content, req.Type, req.Attachments)
	if err != nil {
		h.logger.Error("create message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(identity.FamilyID, "message", message)
	}

	writeJSON(w, http.StatusCreated, message)
}
