package settings

import (
	"encoding/json"
	"net/http"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes the settings read and admin write endpoints.
type Handler struct {
	Service *Service
}

// Get handles GET /api/v1/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.Service.Get(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": current})
}

// Update handles PUT /api/v1/admin/settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	updated, err := h.Service.Update(r.Context(), in)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}
