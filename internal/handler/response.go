package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/session"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"
	"github.com/AlexZinkM/wallet-consolidator/solana"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	resp := model.ErrorResponse{Error: err.Error(), Code: code}

	var simErr *migration.SimulationFailedError
	if errors.As(err, &simErr) {
		resp.Details = simErr.Logs
	}
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: "invalid_request"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// errorStatus maps domain errors to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	var (
		validationErr *migration.ValidationError
		tooLargeErr   *migration.PlanTooLargeError
		mismatchErr   *migration.KeyMismatchError
		simErr        *migration.SimulationFailedError
		submitErr     *migration.SubmissionError
	)

	switch {
	case errors.Is(err, session.ErrLocked):
		return http.StatusUnauthorized, "session_locked"
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return http.StatusUnauthorized, "wrong_password"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, solana.ErrMigrationInProgress):
		return http.StatusConflict, "migration_in_progress"
	case errors.Is(err, crypto.ErrWeakPassword),
		errors.Is(err, crypto.ErrInvalidKeyFormat),
		errors.Is(err, solana.ErrInvalidName),
		errors.Is(err, solana.ErrInvalidSecretKey),
		errors.As(err, &validationErr):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, migration.ErrNothingToMigrate):
		return http.StatusUnprocessableEntity, "nothing_to_migrate"
	case errors.As(err, &tooLargeErr):
		return http.StatusUnprocessableEntity, "plan_too_large"
	case errors.As(err, &mismatchErr):
		return http.StatusUnprocessableEntity, "key_mismatch"
	case errors.Is(err, migration.ErrKeyNotFound):
		return http.StatusUnprocessableEntity, "key_not_found"
	case errors.As(err, &simErr):
		return http.StatusUnprocessableEntity, "simulation_failed"
	case errors.As(err, &submitErr):
		switch submitErr.Kind {
		case migration.SubmissionUserRejected:
			return http.StatusConflict, "user_rejected"
		case migration.SubmissionInsufficientFunds:
			return http.StatusUnprocessableEntity, "insufficient_funds"
		case migration.SubmissionBlockhashExpired:
			return http.StatusGatewayTimeout, "blockhash_expired"
		case migration.SubmissionTimeout:
			return http.StatusGatewayTimeout, "confirmation_timeout"
		default:
			return http.StatusBadGateway, "transaction_rejected"
		}
	default:
		return http.StatusInternalServerError, "internal"
	}
}
