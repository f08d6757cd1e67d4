package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// AdminHandler exposes the back-office order endpoints.
type AdminHandler struct {
	Service *Service
}

// List handles GET /api/v1/admin/orders.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	views, err := h.Service.ListAll(r.Context(), r.URL.Query().Get("status"), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views})
}

// UpdateStatus handles POST /api/v1/admin/orders/{orderID}/status. Admins
// may force any transition the lifecycle table allows.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID, _ := common.UserID(r.Context())
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	view, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), callerID, true, req.Status, req.Note)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}
