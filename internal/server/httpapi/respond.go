package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkrylov/medvault/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps service-layer sentinels to HTTP status/reason pairs.
// Anything unmatched is reported as a generic internal error so internal
// details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		errorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidOTP):
		errorJSON(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, common.ErrorOTPExpired):
		errorJSON(w, http.StatusBadRequest, "OTP has expired")
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		errorJSON(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, common.ErrorUnauthorized):
		errorJSON(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		errorJSON(w, http.StatusForbidden, "Access denied. You do not have permission to access this document.")
	case errors.Is(err, common.ErrorNotFound):
		errorJSON(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		errorJSON(w, http.StatusConflict, "Phone number is already registered")
	default:
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
