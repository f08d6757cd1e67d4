package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes the catalog endpoints.
type Handler struct {
	Service *Service
}

// ListShops handles GET /api/v1/shops.
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	shopType := r.URL.Query().Get("type")
	shops, err := h.Service.ListShops(r.Context(), shopType, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shops})
}

// GetShop handles GET /api/v1/shops/{shopID}.
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.Service.GetShop(r.Context(), chi.URLParam(r, "shopID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shop})
}

// Menu handles GET /api/v1/shops/{shopID}/items.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Menu(r.Context(), chi.URLParam(r, "shopID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// CreateShop handles POST /api/v1/shops.
func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var in CreateShopInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	shop, err := h.Service.CreateShop(r.Context(), userID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": shop})
}

// UpdateShop handles PUT /api/v1/shops/{shopID}.
func (h *Handler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var in UpdateShopInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	shop, err := h.Service.UpdateShop(r.Context(), chi.URLParam(r, "shopID"), userID, common.HasRole(r.Context(), "admin"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shop})
}

// CreateItem handles POST /api/v1/shops/{shopID}/items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	item, err := h.Service.CreateItem(r.Context(), chi.URLParam(r, "shopID"), userID, common.HasRole(r.Context(), "admin"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// UpdateItem handles PUT /api/v1/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var in ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	item, err := h.Service.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), userID, common.HasRole(r.Context(), "admin"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": item})
}

// DeleteItem handles DELETE /api/v1/items/{itemID}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	if err := h.Service.DeleteItem(r.Context(), chi.URLParam(r, "itemID"), userID, common.HasRole(r.Context(), "admin")); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
