package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rwa-ledger/internal/platform/middleware"
	"rwa-ledger/internal/token"
	dErrors "rwa-ledger/pkg/domain-errors"
)

// TokenHandler forwards standard fungible-token operations to one asset's
// ledger. The lifecycle layer never re-implements these; it only reads
// balances and issues mint/burn commands.
type TokenHandler struct {
	ledger token.Ledger
}

func NewTokenHandler(ledger token.Ledger) *TokenHandler {
	return &TokenHandler{ledger: ledger}
}

// Register mounts the passthrough under /token on an asset-scoped subrouter.
func (h *TokenHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/token", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/transfer", h.transfer)
			r.Post("/transfer-from", h.transferFrom)
			r.Post("/mint", h.mint)
			r.Post("/burn", h.burn)
			r.Post("/allowance/increase", h.increaseAllowance)
			r.Post("/allowance/decrease", h.decreaseAllowance)
		})

		r.Get("/balance/{address}", h.balance)
		r.Get("/supply", h.supply)
		r.Get("/allowance", h.allowance)
	})
}

type amountBody struct {
	Owner     string `json:"owner,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Spender   string `json:"spender,omitempty"`
	Amount    uint64 `json:"amount"`
}

func (h *TokenHandler) transfer(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.Transfer(r.Context(), caller, body.Recipient, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) transferFrom(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.TransferFrom(r.Context(), caller, body.Owner, body.Recipient, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) mint(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.Mint(r.Context(), caller, body.Recipient, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) burn(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.Burn(r.Context(), caller, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) increaseAllowance(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.IncreaseAllowance(r.Context(), caller, body.Spender, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) decreaseAllowance(w http.ResponseWriter, r *http.Request) {
	var body amountBody
	if !decode(w, r, &body) {
		return
	}
	caller := middleware.GetCaller(r.Context())
	if err := h.ledger.DecreaseAllowance(r.Context(), caller, body.Spender, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TokenHandler) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.BalanceOf(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *TokenHandler) supply(w http.ResponseWriter, r *http.Request) {
	supply, err := h.ledger.TotalSupply(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"total_supply": supply})
}

func (h *TokenHandler) allowance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	owner, spender := query.Get("owner"), query.Get("spender")
	if owner == "" || spender == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "owner and spender are required"))
		return
	}
	allowance, err := h.ledger.Allowance(r.Context(), owner, spender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"allowance": allowance})
}
