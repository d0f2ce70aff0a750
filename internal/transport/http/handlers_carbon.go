package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rwa-ledger/internal/carbon"
	"rwa-ledger/internal/platform/middleware"
)

// CarbonHandler exposes the carbon-credit lifecycle over HTTP.
type CarbonHandler struct {
	service *carbon.Service
}

func NewCarbonHandler(service *carbon.Service) *CarbonHandler {
	return &CarbonHandler{service: service}
}

// Register mounts the carbon routes on an asset-scoped subrouter.
func (h *CarbonHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/verifications", h.verifyCredits)
		r.Post("/verifications/{id}/status", h.updateVerificationStatus)
		r.Post("/retirements", h.retireCredits)
	})

	r.Get("/info", h.info)
	r.Get("/verifications", h.listVerifications)
	r.Get("/verifications/{id}", h.getVerification)
	r.Get("/retirements", h.listRetirements)
	r.Get("/retirements/{id}", h.getRetirement)
	r.Get("/available-credits", h.availableCredits)
	r.Get("/retired-credits", h.retiredCredits)
}

func (h *CarbonHandler) verifyCredits(w http.ResponseWriter, r *http.Request) {
	var params carbon.VerifyParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.VerifyCredits(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *CarbonHandler) updateVerificationStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status carbon.VerificationStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	record, err := h.service.UpdateVerificationStatus(r.Context(), middleware.GetCaller(r.Context()),
		chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *CarbonHandler) retireCredits(w http.ResponseWriter, r *http.Request) {
	var params carbon.RetireParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.RetireCredits(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *CarbonHandler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *CarbonHandler) getVerification(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Verification(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *CarbonHandler) listVerifications(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListVerifications(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CarbonHandler) getRetirement(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Retirement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *CarbonHandler) listRetirements(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListRetirements(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CarbonHandler) availableCredits(w http.ResponseWriter, r *http.Request) {
	available, err := h.service.AvailableCredits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"available_credits": available})
}

func (h *CarbonHandler) retiredCredits(w http.ResponseWriter, r *http.Request) {
	retired, err := h.service.RetiredCredits(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"retired_credits": retired})
}
