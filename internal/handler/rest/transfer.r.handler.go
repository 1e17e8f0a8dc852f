package hrest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/pkg/response"
)

type TransferRestHandler struct {
	transferUC *usecase.TransferUsecase
	accountUC  *usecase.AccountUsecase
}

func NewTransferRestHandler(transferUC *usecase.TransferUsecase, accountUC *usecase.AccountUsecase) *TransferRestHandler {
	return &TransferRestHandler{transferUC: transferUC, accountUC: accountUC}
}

type PreviewFeeJSON struct {
	Amount string `json:"amount"`
}

func (h *TransferRestHandler) PreviewFee(w http.ResponseWriter, r *http.Request) {
	var in PreviewFeeJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	preview, err := h.transferUC.PreviewFee(in.Amount)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, preview)
}

type ResolveRecipientJSON struct {
	Email string `json:"email"`
}

func (h *TransferRestHandler) ResolveRecipient(w http.ResponseWriter, r *http.Request) {
	var in ResolveRecipientJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accountUC.ResolveRecipient(r.Context(), in.Email)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"account_id": account.ID})
}

type TransferJSON struct {
	SenderAccountID string `json:"sender_account_id"`
	RecipientEmail  string `json:"recipient_email"`
	Asset           string `json:"asset"`
	Amount          string `json:"amount"`
	Note            string `json:"note"`
}

func (in *TransferJSON) toInput() usecase.TransferInput {
	return usecase.TransferInput{
		SenderAccountID: in.SenderAccountID,
		RecipientEmail:  in.RecipientEmail,
		Asset:           in.Asset,
		Amount:          in.Amount,
		Note:            in.Note,
	}
}

func (h *TransferRestHandler) ValidateTransfer(w http.ResponseWriter, r *http.Request) {
	var in TransferJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.transferUC.ValidateTransfer(r.Context(), in.toInput()); err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *TransferRestHandler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var in TransferJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := in.toInput()

	// A client-generated key makes network retries safe to replay.
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		if _, err := uuid.Parse(key); err != nil {
			response.Error(w, http.StatusBadRequest, "Idempotency-Key must be a UUID")
			return
		}
		input.IdempotencyKey = &key
	}

	receipt, err := h.transferUC.SubmitTransfer(r.Context(), input)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, receipt)
}
