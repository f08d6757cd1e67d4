package promo

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

// Handler exposes promo preview and admin management endpoints.
type Handler struct {
	Service *Service
}

type previewRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
	ShipFee  int64  `json:"ship_fee"`
}

// Preview handles POST /api/v1/promos/preview. It reports the discount the
// code would yield without consuming quota.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	userID, _ := common.UserID(r.Context())
	discount, err := h.Service.Preview(r.Context(), req.Code, userID, req.Subtotal, req.ShipFee)
	if err != nil {
		common.RenderError(w, AsAppError(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"code":     req.Code,
		"discount": discount,
	}})
}

type promoPayload struct {
	Code         string     `json:"code"`
	Kind         string     `json:"kind"`
	Value        int64      `json:"value"`
	MaxDiscount  *int64     `json:"max_discount"`
	UsageLimit   *int32     `json:"usage_limit"`
	PerUserLimit *int32     `json:"per_user_limit"`
	DurationDays *int32     `json:"duration_days"`
	ValidFrom    *time.Time `json:"valid_from"`
	ValidTo      *time.Time `json:"valid_to"`
	Enabled      *bool      `json:"enabled"`
}

func (p promoPayload) validate() error {
	if p.Code == "" {
		return common.NewAppError("VALIDATION_ERROR", "code is required", http.StatusBadRequest, nil)
	}
	switch p.Kind {
	case KindPercent:
		if p.Value < 0 || p.Value > 100 {
			return common.NewAppError("VALIDATION_ERROR", "percent value must be between 0 and 100", http.StatusBadRequest, nil)
		}
	case KindFixed, KindFreeShip:
		if p.Value < 0 {
			return common.NewAppError("VALIDATION_ERROR", "value must not be negative", http.StatusBadRequest, nil)
		}
	default:
		return common.NewAppError("VALIDATION_ERROR", "kind must be percent, fixed, or freeship", http.StatusBadRequest, nil)
	}
	return nil
}

// Create handles POST /api/v1/admin/promos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p promoPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := p.validate(); err != nil {
		common.RenderError(w, err)
		return
	}
	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}
	created, err := h.Service.Store.CreatePromo(r.Context(), store.CreatePromoParams{
		Code:         p.Code,
		Kind:         p.Kind,
		Value:        p.Value,
		MaxDiscount:  p.MaxDiscount,
		UsageLimit:   p.UsageLimit,
		PerUserLimit: p.PerUserLimit,
		DurationDays: p.DurationDays,
		ValidFrom:    p.ValidFrom,
		ValidTo:      p.ValidTo,
		Enabled:      enabled,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			common.JSONError(w, http.StatusConflict, "PROMO_CODE_TAKEN", "promo code already exists", nil)
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// List handles GET /api/v1/admin/promos.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 50)
	promos, err := h.Service.Store.ListPromos(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": promos})
}

// Update handles PUT /api/v1/admin/promos/{promoID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p promoPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}
	updated, err := h.Service.Store.UpdatePromo(r.Context(), store.UpdatePromoParams{
		ID:           chi.URLParam(r, "promoID"),
		Value:        p.Value,
		MaxDiscount:  p.MaxDiscount,
		UsageLimit:   p.UsageLimit,
		PerUserLimit: p.PerUserLimit,
		DurationDays: p.DurationDays,
		ValidFrom:    p.ValidFrom,
		ValidTo:      p.ValidTo,
		Enabled:      enabled,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "promo not found", nil)
		return
	}
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

type enableRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabled handles PATCH /api/v1/admin/promos/{promoID}/enabled.
func (h *Handler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	if err := h.Service.Store.SetPromoEnabled(r.Context(), chi.URLParam(r, "promoID"), req.Enabled); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
