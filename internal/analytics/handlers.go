package analytics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes admin analytics endpoints.
type Handler struct {
	Svc *Service
}

// Overview handles GET /api/v1/admin/analytics/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Svc.GetOverview(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": overview})
}

// Sales handles GET /api/v1/admin/analytics/sales?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	to := h.Svc.now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from must be YYYY-MM-DD", nil)
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "to must be YYYY-MM-DD", nil)
			return
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "from must precede to", nil)
		return
	}
	rows, err := h.Svc.SalesRange(r.Context(), from, to)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// TopItems handles GET /api/v1/admin/analytics/top-items.
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	limit := int32(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}
	page, _ := common.ParsePagination(r, int(limit))
	rows, err := h.Svc.TopItems(r.Context(), limit, int32(page-1)*limit)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}
