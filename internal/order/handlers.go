package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes customer-facing order endpoints.
type Handler struct {
	Service *Service
}

// Create handles POST /api/v1/orders. Authenticated customers and guests
// (via guest_id) may both place orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	customerID, _ := common.UserID(r.Context())
	view, err := h.Service.Create(r.Context(), customerID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID, _ := common.UserID(r.Context())
	view, err := h.Service.Get(r.Context(), chi.URLParam(r, "orderID"), callerID, common.HasRole(r.Context(), "admin"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// ListMine handles GET /api/v1/orders.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	views, err := h.Service.ListMine(r.Context(), callerID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

type cancelRequest struct {
	Note string `json:"note"`
}

// Cancel handles POST /api/v1/orders/{orderID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, _ := common.UserID(r.Context())
	var req cancelRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Note == "" {
		req.Note = "cancelled by customer"
	}
	view, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), callerID,
		common.HasRole(r.Context(), "admin"), string(StatusCancelled), req.Note)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// CancelLine handles POST /api/v1/orders/{orderID}/items/{lineID}/cancel.
func (h *Handler) CancelLine(w http.ResponseWriter, r *http.Request) {
	callerID, _ := common.UserID(r.Context())
	view, err := h.Service.CancelLine(r.Context(), chi.URLParam(r, "orderID"), chi.URLParam(r, "lineID"),
		callerID, common.HasRole(r.Context(), "admin"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}
