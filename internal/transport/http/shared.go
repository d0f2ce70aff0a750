// Package httptransport is the thin HTTP layer over the asset services. It
// decodes requests, resolves the caller identity set by the auth middleware,
// delegates to a service and translates domain errors to JSON envelopes.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	dErrors "rwa-ledger/pkg/domain-errors"
)

// statusFor maps domain error codes to HTTP statuses. Role failures are 403
// rather than 401: the caller is authenticated, just not the right role.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInsufficientFunds, dErrors.CodeCapacityExceeded:
		return http.StatusUnprocessableEntity
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeNotInitialized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	envelope := errorEnvelope{Error: string(code)}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		envelope.Message = domainErr.Message
	}
	writeJSON(w, statusFor(code), envelope)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return false
	}
	return true
}

// pageParams reads the ?after=&limit= cursor pair. The store clamps the
// limit, so a missing or oversized value is fine here.
func pageParams(r *http.Request) (string, int) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	return query.Get("after"), limit
}
