package audit

import (
	"net/http"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/admin/audit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	logs, err := h.Service.Store.ListAuditLogs(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": logs})
}
