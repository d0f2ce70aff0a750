package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rwa-ledger/internal/oil"
	"rwa-ledger/internal/platform/middleware"
)

// OilHandler exposes the oil-reserve lifecycle over HTTP.
type OilHandler struct {
	service *oil.Service
}

func NewOilHandler(service *oil.Service) *OilHandler {
	return &OilHandler{service: service}
}

// Register mounts the oil routes on an asset-scoped subrouter.
func (h *OilHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/extractions", h.recordExtraction)
		r.Post("/audits", h.conductAudit)
		r.Post("/audits/{id}/status", h.updateAuditStatus)
		r.Post("/trades", h.recordTrade)
		r.Post("/trades/{id}/status", h.updateTradeStatus)
	})

	r.Get("/info", h.info)
	r.Get("/extractions", h.listExtractions)
	r.Get("/extractions/{id}", h.getExtraction)
	r.Get("/audits", h.listAudits)
	r.Get("/audits/{id}", h.getAudit)
	r.Get("/trades", h.listTrades)
	r.Get("/trades/{id}", h.getTrade)
	r.Get("/available-barrels", h.availableBarrels)
	r.Get("/extracted-barrels", h.extractedBarrels)
	r.Get("/quality", h.quality)
}

func (h *OilHandler) recordExtraction(w http.ResponseWriter, r *http.Request) {
	var params oil.ExtractionParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.RecordExtraction(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *OilHandler) conductAudit(w http.ResponseWriter, r *http.Request) {
	var params oil.AuditParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.ConductReserveAudit(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *OilHandler) updateAuditStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status oil.AuditStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	record, err := h.service.UpdateAuditStatus(r.Context(), middleware.GetCaller(r.Context()),
		chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *OilHandler) recordTrade(w http.ResponseWriter, r *http.Request) {
	var params oil.TradeParams
	if !decode(w, r, &params) {
		return
	}
	record, err := h.service.RecordTrade(r.Context(), middleware.GetCaller(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *OilHandler) updateTradeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status oil.TradeStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	record, err := h.service.UpdateTradeStatus(r.Context(), middleware.GetCaller(r.Context()),
		chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *OilHandler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *OilHandler) getExtraction(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Extraction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *OilHandler) listExtractions(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListExtractions(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *OilHandler) getAudit(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Audit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *OilHandler) listAudits(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListAudits(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *OilHandler) getTrade(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Trade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *OilHandler) listTrades(w http.ResponseWriter, r *http.Request) {
	after, limit := pageParams(r)
	page, err := h.service.ListTrades(r.Context(), after, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *OilHandler) availableBarrels(w http.ResponseWriter, r *http.Request) {
	available, err := h.service.AvailableBarrels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"available_barrels": available})
}

func (h *OilHandler) extractedBarrels(w http.ResponseWriter, r *http.Request) {
	extracted, err := h.service.ExtractedBarrels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"extracted_barrels": extracted})
}

func (h *OilHandler) quality(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.ReserveQuality(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
