package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type ChoreHandler struct {
	choreStore *store.ChoreStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{choreStore: cs, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(familyID int64, event string, payload any) {
	if h.hub != nil {
		h.hub.Broadcast(familyID, event, payload)
	}
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.choreStore.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	var req struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Points      int              `json:"points"`
		Schedule    model.Schedule   `json:"schedule"`
		Difficulty  string           `json:"difficulty"`
		Photos      model.StringList `json:"photos"`
		Assignees   []int64          `json:"assignees"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "easy"
	}

	chore, err := h.choreStore.Create(familyID, req.Title, req.Description, req.Points, req.Schedule, req.Difficulty, req.Photos, req.Assignees)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("create chore", "error", err)
		}
		writeStoreError(w, err)
		return
	}

	h.broadcast(familyID, "chore_created", chore)

	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	chore, err := h.choreStore.GetDetail(auth.FamilyID(r.Context()), id)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

// Complete records the caller's proof-of-work for their assignment on the
// chore.
func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	identity, _ := auth.FromContext(r.Context())
	if !identity.HasUser() {
		writeError(w, http.StatusForbidden, "a signed-in member is required")
		return
	}

	var req struct {
		BeforePhotos model.StringList `json:"beforePhotos"`
		AfterPhotos  model.StringList `json:"afterPhotos"`
		Notes        string           `json:"notes"`
		TimeSpent    *int             `json:"timeSpent"`
	}
	if r.Body != nil {
		// Body is optional; decode failures fall back to an empty submission.
		json.NewDecoder(r.Body).Decode(&req)
	}

	completion, err := h.choreStore.SubmitCompletion(id, identity.UserID, req.BeforePhotos, req.AfterPhotos, req.Notes, req.TimeSpent)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrInvalidTransition) {
			h.logger.Error("submit completion", "error", err)
		}
		writeStoreError(w, err)
		return
	}

	h.broadcast(identity.FamilyID, "chore_completed", completion)

	writeJSON(w, http.StatusCreated, completion)
}

// Approve reviews a submitted completion. Parent-only.
func (h *ChoreHandler) Approve(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	var req struct {
		CompletionID *int64 `json:"completionId"`
		Approved     *bool  `json:"approved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompletionID == nil {
		writeError(w, http.StatusBadRequest, "completionId is required")
		return
	}
	approved := req.Approved != nil && *req.Approved

	status, err := h.choreStore.ReviewCompletion(familyID, *req.CompletionID, approved)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrAlreadyReviewed) {
			h.logger.Error("review completion", "error", err)
		}
		writeStoreError(w, err)
		return
	}

	h.broadcast(familyID, "chore_reviewed", map[string]any{
		"completionId": *req.CompletionID,
		"status":       status,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": status})
}
