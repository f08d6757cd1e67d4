package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ngocvh/backend-cho/internal/common"
)

// Handler exposes ledger endpoints for shippers and admins.
type Handler struct {
	Service *Service
}

// MyBalance handles GET /api/v1/shipper/balance.
func (h *Handler) MyBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	summary, err := h.Service.BalanceFor(r.Context(), userID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// MyHistory handles GET /api/v1/shipper/ledger.
func (h *Handler) MyHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	entries, err := h.Service.History(r.Context(), userID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// ShipperBalance handles GET /api/v1/admin/ledger/{shipperID}.
func (h *Handler) ShipperBalance(w http.ResponseWriter, r *http.Request) {
	shipperID := chi.URLParam(r, "shipperID")
	summary, err := h.Service.BalanceFor(r.Context(), shipperID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	entries, err := h.Service.History(r.Context(), shipperID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"balance": summary,
		"entries": entries,
	}})
}

// Balances handles GET /api/v1/admin/ledger.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Store.ListShipperBalances(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	type row struct {
		ShipperID string `json:"shipper_id"`
		Balance   int64  `json:"balance"`
		Direction string `json:"direction"`
		Entries   int64  `json:"entries"`
	}
	out := make([]row, 0, len(rows))
	for _, b := range rows {
		out = append(out, row{
			ShipperID: b.ShipperID,
			Balance:   b.Balance,
			Direction: SettlementDirection(b.Balance),
			Entries:   b.Entries,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

type settleRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Settle handles POST /api/v1/admin/ledger/{shipperID}/settle.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	entry, balance, err := h.Service.Settle(r.Context(), chi.URLParam(r, "shipperID"), req.Amount, req.Description)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
		"entry":   entry,
		"balance": balance,
	}})
}

type adjustRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Adjust handles POST /api/v1/admin/ledger/{shipperID}/adjust.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request payload", nil)
		return
	}
	entry, err := h.Service.Adjust(r.Context(), chi.URLParam(r, "shipperID"), req.Amount, req.Description)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": entry})
}
