package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// ShipperHandler exposes the delivery-side order endpoints.
type ShipperHandler struct {
	Service *Service
}

// Feed handles GET /api/v1/shipper/orders/pending.
func (h *ShipperHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	views, err := h.Service.ListPending(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Mine handles GET /api/v1/shipper/orders.
func (h *ShipperHandler) Mine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	views, err := h.Service.ListForShipper(r.Context(), callerID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// Accept handles POST /api/v1/shipper/orders/{orderID}/accept. Exactly one
// of several concurrent accepts wins; the rest get ORDER_TAKEN.
func (h *ShipperHandler) Accept(w http.ResponseWriter, r *http.Request) {
	callerID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	view, err := h.Service.Accept(r.Context(), chi.URLParam(r, "orderID"), callerID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus handles POST /api/v1/shipper/orders/{orderID}/status.
func (h *ShipperHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	view, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), callerID, false, req.Status, req.Note)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}
