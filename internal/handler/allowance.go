package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/websocket"
)

type AllowanceHandler struct {
	allowanceStore *store.AllowanceStore
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewAllowanceHandler(as *store.AllowanceStore, hub *websocket.Hub, logger *slog.Logger) *AllowanceHandler {
	return &AllowanceHandler{allowanceStore: as, hub: hub, logger: logger}
}

// List returns the caller's own ledger; a parent sees the whole family's.
func (h *AllowanceHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var (
		txns []model.AllowanceTransaction
		err  error
	)
	if identity.IsParent() {
		txns, err = h.allowanceStore.ListByFamily(identity.FamilyID)
	} else {
		txns, err = h.allowanceStore.ListByUser(identity.UserID)
	}
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []model.AllowanceTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// Distribute deposits an allowance amount, split across jars by percentage,
// to each listed family member. Parent-only. Each target gets its own
// transaction and ledger row; amounts are in cents.
func (h *AllowanceHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	var req struct {
		Amount       int64  `json:"amount"`
		Distribution *struct {
			Spend int `json:"spend"`
			Save  int `json:"save"`
			Give  int `json:"give"`
		} `json:"distribution"`
		UserIDs []int64 `json:"userIds"`
		Note    string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Distribution == nil {
		writeError(w, http.StatusBadRequest, "distribution is required")
		return
	}
	d := *req.Distribution
	if d.Spend < 0 || d.Save < 0 || d.Give < 0 || d.Spend+d.Save+d.Give != 100 {
		writeError(w, http.StatusBadRequest, "distribution percentages must sum to 100")
		return
	}
	if len(req.UserIDs) == 0 {
		writeError(w, http.StatusBadRequest, "userIds is required")
		return
	}

	txns := make([]model.AllowanceTransaction, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		txn, err := h.allowanceStore.Deposit(familyID, userID, req.Amount, d.Spend, d.Save, req.Note)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				h.logger.Error("deposit allowance", "user_id", userID, "error", err)
			}
			writeStoreError(w, err)
			return
		}
		txns = append(txns, *txn)
	}

	if h.hub != nil {
		h.hub.Broadcast(familyID, "allowance_distributed", txns)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "transactions": txns})
}
