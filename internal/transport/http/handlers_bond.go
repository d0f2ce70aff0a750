package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rwa-ledger/internal/bond"
	"rwa-ledger/internal/platform/middleware"
)

// BondHandler exposes the bond lifecycle over HTTP. Transitions require an
// authenticated caller; queries are open reads.
type BondHandler struct {
	service *bond.Service
}

func NewBondHandler(service *bond.Service) *BondHandler {
	return &BondHandler{service: service}
}

// Register mounts the bond routes on an asset-scoped subrouter. requireAuth
// wraps the transition routes; queries are open reads.
func (h *BondHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/coupons", h.payCoupon)
		r.Post("/coupons/{id}/status", h.updatePaymentStatus)
		r.Post("/redemptions", h.redeem)
		r.Post("/transfers", h.recordTransfer)
		r.Post("/interest-calculations", h.calculateInterest)
		r.Post("/rating", h.updateRating)
		r.Post("/collateral-value", h.updateCollateralValue)
	})

	r.Get("/info", h.info)
	r.Get("/coupons", h.listPayments)
	r.Get("/coupons/{id}", h.getPayment)
	r.Get("/redemptions", h.listRedemptions)
	r.Get("/redemptions/{id}", h.getRedemption)
	r.Get("/transfers", h.listTransfers)
	r.Get("/transfers/{id}", h.getTransfer)
	r.Get("/interest-calculations", h.listCalculations)
	r.Get("/interest-calculations/{id}", h.getCalculation)
	r.Get("/holders/{address}", h.holder)
	r.Get("/outstanding-principal", h.outstandingPrincipal)
	r.Get("/accrued-interest/{address}", h.accruedInterest)
	r.Get("/next-coupon-date", h.nextCouponDate)
	r.Get("/yield", h.yield)
}

func (h *BondHandler) payCoupon(w http.ResponseWriter, r *http.Request) {
	var params bond.PayCouponParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.PayCoupon(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BondHandler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status          bond.PaymentStatus `json:"status"`
		TransactionHash string             `json:"transaction_hash"`
	}
	if !decode(w, r, &body) {
		return
	}
	record, err := h.service.UpdatePaymentStatus(r.Context(), middleware.GetCaller(r.Context()),
		chi.URLParam(r, "id"), body.Status, body.TransactionHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BondHandler) redeem(w http.ResponseWriter, r *http.Request) {
	var params bond.RedeemParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.RedeemBonds(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BondHandler) recordTransfer(w http.ResponseWriter, r *http.Request) {
	var params bond.TransferParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.RecordTransfer(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BondHandler) calculateInterest(w http.ResponseWriter, r *http.Request) {
	var params bond.CalculateInterestParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.CalculateInterest(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *BondHandler) updateRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating bond.Rating `json:"rating"`
	}
	if !decode(w, r, &body) {
		return
	}
	info, err := h.service.UpdateRating(r.Context(), middleware.GetCaller(r.Context()), body.Rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *BondHandler) updateCollateralValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CollateralValue decimal.Decimal `json:"collateral_value"`
	}
	if !decode(w, r, &body) {
		return
	}
	info, err := h.service.UpdateCollateralValue(r.Context(), middleware.GetCaller(r.Context()), body.CollateralValue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *BondHandler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *BondHandler) getPayment(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Payment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BondHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListPayments(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BondHandler) getRedemption(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Redemption(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BondHandler) listRedemptions(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListRedemptions(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BondHandler) getTransfer(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Transfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BondHandler) listTransfers(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListTransfers(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BondHandler) getCalculation(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Calculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *BondHandler) listCalculations(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListCalculations(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *BondHandler) holder(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Holder(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *BondHandler) outstandingPrincipal(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.OutstandingPrincipal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"outstanding_principal": value})
}

func (h *BondHandler) accruedInterest(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.AccruedInterest(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"accrued_interest": value})
}

func (h *BondHandler) nextCouponDate(w http.ResponseWriter, r *http.Request) {
	date, err := h.service.NextCouponDate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"next_coupon_date": date.Format(time.RFC3339)})
}

func (h *BondHandler) yield(w http.ResponseWriter, r *http.Request) {
	yield, err := h.service.BondYield(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, yield)
}
