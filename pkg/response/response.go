package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KelechiEze/paykoin-sub000/pkg/xerrors"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Status:  "error",
		Message: msg,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// DomainError maps a domain error to its HTTP status and writes the envelope.
// Raw backend errors are never forwarded to the client.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrAccountNotFound),
		errors.Is(err, xerrors.ErrWalletNotFound),
		errors.Is(err, xerrors.ErrRecipientNotFound),
		errors.Is(err, xerrors.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrEmailInUse),
		errors.Is(err, xerrors.ErrWalletExists),
		errors.Is(err, xerrors.ErrDuplicateIdempotencyKey):
		Error(w, http.StatusConflict, err.Error())
	case xerrors.IsValidation(err),
		errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrAssetNotSupported),
		errors.Is(err, xerrors.ErrEmailRequired):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, xerrors.ErrTransferFailed):
		Error(w, http.StatusBadGateway, xerrors.ErrTransferFailed.Error())
	default:
		Error(w, http.StatusInternalServerError, xerrors.ErrInternalServer.Error())
	}
}
