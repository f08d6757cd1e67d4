package notify

import (
	"encoding/json"
	"net/http"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Handler exposes device registration endpoints.
type Handler struct {
	Store *store.Store
}

type deviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice handles POST /api/v1/devices.
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "device token is required", nil)
		return
	}
	device, err := h.Store.UpsertDevice(r.Context(), userID, req.Token, req.Platform)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": device})
}

// UnregisterDevice handles DELETE /api/v1/devices.
func (h *Handler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "device token is required", nil)
		return
	}
	if err := h.Store.DeleteDevice(r.Context(), userID, req.Token); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
