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

type RewardHandler struct {
	rewardStore *store.RewardStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewardStore: rs, hub: hub, logger: logger}
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardStore.ListActive(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

// Create adds a reward to the catalog. Parent-only. A null stock means
// unlimited.
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	var req struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		PointCost   int              `json:"pointCost"`
		Photos      model.StringList `json:"photos"`
		Stock       *int             `json:"stock"`
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
	if req.PointCost <= 0 {
		writeError(w, http.StatusBadRequest, "pointCost must be positive")
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "stock must not be negative")
		return
	}

	reward, err := h.rewardStore.Create(familyID, req.Title, req.Description, req.PointCost, req.Photos, req.Stock)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(familyID, "reward_created", reward)
	}

	writeJSON(w, http.StatusCreated, reward)
}

// Redeem claims a reward for the caller, deducting its point cost.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
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

	redemption, err := h.rewardStore.Redeem(identity.FamilyID, id, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound),
			errors.Is(err, store.ErrOutOfStock),
			errors.Is(err, store.ErrInsufficientPoints):
		default:
			h.logger.Error("redeem reward", "error", err)
		}
		writeStoreError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(identity.FamilyID, "reward_redeemed", redemption)
	}

	writeJSON(w, http.StatusOK, redemption)
}
