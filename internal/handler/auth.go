package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/token"
)

const (
	defaultParentAvatar = "🧑"
	defaultChildAvatar  = "🐣"
)

type AuthHandler struct {
	familyStore *store.FamilyStore
	userStore   *store.UserStore
	issuer      *token.Issuer
	logger      *slog.Logger
}

func NewAuthHandler(fs *store.FamilyStore, us *store.UserStore, issuer *token.Issuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{familyStore: fs, userStore: us, issuer: issuer, logger: logger}
}

// Register creates a family with its first parent and signs the parent in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilyName string `json:"familyName"`
		PIN        string `json:"pin"`
		ParentName string `json:"parentName"`
		Avatar     string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.FamilyName = strings.TrimSpace(req.FamilyName)
	req.ParentName = strings.TrimSpace(req.ParentName)
	if req.FamilyName == "" || req.PIN == "" || req.ParentName == "" {
		writeError(w, http.StatusBadRequest, "familyName, pin and parentName are required")
		return
	}
	if len(req.PIN) != 4 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
		return
	}
	if req.Avatar == "" {
		req.Avatar = defaultParentAvatar
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}

	family, parent, err := h.familyStore.Register(req.FamilyName, string(hash), req.ParentName, req.Avatar)
	if err != nil {
		h.logger.Error("register family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register family")
		return
	}

	access, refresh, err := h.issueTokens(parent)
	if err != nil {
		h.logger.Error("issue tokens", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":        access,
		"refreshToken": refresh,
		"family":       family,
		"user":         parent,
	})
}

// Login verifies the family code and PIN. With a userId the member is signed
// in and tokens are issued; without one only the family and its members are
// returned, so the client can present a member picker. No token is issued
// until a member is selected.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilyCode string `json:"familyCode"`
		PIN        string `json:"pin"`
		UserID     *int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.FamilyCode = strings.TrimSpace(req.FamilyCode)
	if req.FamilyCode == "" || req.PIN == "" {
		writeError(w, http.StatusBadRequest, "familyCode and pin are required")
		return
	}

	family, err := h.familyStore.GetByCode(req.FamilyCode)
	if err != nil {
		h.logger.Error("get family by code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up family")
		return
	}
	if family == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(family.PINHash), []byte(req.PIN)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if req.UserID == nil {
		members, err := h.userStore.ListByFamily(family.ID)
		if err != nil {
			h.logger.Error("list members", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list members")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"family": family,
			"users":  members,
		})
		return
	}

	user, err := h.userStore.GetMember(family.ID, *req.UserID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	access, refresh, err := h.issueTokens(user)
	if err != nil {
		h.logger.Error("issue tokens", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":        access,
		"refreshToken": refresh,
		"family":       family,
		"user":         user,
	})
}

// Refresh mints a new access token from a valid refresh token. The role is
// re-read from the user row rather than trusted from the old token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	identity, err := h.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid refresh token")
		return
	}

	if identity.HasUser() {
		user, err := h.userStore.GetMember(identity.FamilyID, identity.UserID)
		if err != nil {
			h.logger.Error("get member", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to look up user")
			return
		}
		if user == nil {
			writeError(w, http.StatusForbidden, "invalid refresh token")
			return
		}
		identity.Role = user.Role
	}

	access, err := h.issuer.IssueAccess(identity)
	if err != nil {
		h.logger.Error("issue access token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": access})
}

// Me returns the caller's identity snapshot.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	family, err := h.familyStore.GetByID(identity.FamilyID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "family not found")
		return
	}

	if !identity.HasUser() {
		writeJSON(w, http.StatusOK, map[string]any{"family": family})
		return
	}

	user, err := h.userStore.GetMember(identity.FamilyID, identity.UserID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "family": family})
}

// RegisterMember adds a member to the caller's family. Parent-only.
func (h *AuthHandler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleChild
	}
	if req.Role != model.RoleParent && req.Role != model.RoleChild {
		writeError(w, http.StatusBadRequest, "role must be parent or child")
		return
	}
	if req.Avatar == "" {
		if req.Role == model.RoleParent {
			req.Avatar = defaultParentAvatar
		} else {
			req.Avatar = defaultChildAvatar
		}
	}

	user, err := h.userStore.Create(identity.FamilyID, req.Name, req.Role, req.Avatar)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create member")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) issueTokens(user *model.User) (access, refresh string, err error) {
	identity := auth.Identity{UserID: user.ID, FamilyID: user.FamilyID, Role: user.Role}
	access, err = h.issuer.IssueAccess(identity)
	if err != nil {
		return "", "", err
	}
	refresh, err = h.issuer.IssueRefresh(identity)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
