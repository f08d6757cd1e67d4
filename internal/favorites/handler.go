package favorites

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes favorite-shop endpoints for authenticated customers.
type Handler struct {
	Svc *Service
}

// List handles GET /api/v1/favorites.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	shops, err := h.Svc.List(r.Context(), userID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shops})
}

// Toggle handles POST /api/v1/favorites.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req struct {
		ShopID string `json:"shop_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShopID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop_id is required", nil)
		return
	}
	favorited, err := h.Svc.Toggle(r.Context(), userID, req.ShopID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"favorited": favorited}})
}

// Check handles GET /api/v1/favorites/{shopID}.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"favorited": false}})
		return
	}
	favorited, err := h.Svc.Check(r.Context(), userID, chi.URLParam(r, "shopID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"favorited": favorited}})
}
