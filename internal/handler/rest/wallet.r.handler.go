package hrest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/pkg/response"
)

type WalletRestHandler struct {
	walletUC *usecase.WalletUsecase
	ledgerUC *usecase.LedgerUsecase
}

func NewWalletRestHandler(walletUC *usecase.WalletUsecase, ledgerUC *usecase.LedgerUsecase) *WalletRestHandler {
	return &WalletRestHandler{walletUC: walletUC, ledgerUC: ledgerUC}
}

type CreateWalletJSON struct {
	Asset string `json:"asset"`
	Name  string `json:"name"`
}

func (h *WalletRestHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var in CreateWalletJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wallet, err := h.walletUC.CreateWallet(r.Context(), chi.URLParam(r, "accountID"), in.Asset, in.Name)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, wallet)
}

func (h *WalletRestHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.walletUC.GetBalance(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "asset"))
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"asset":   chi.URLParam(r, "asset"),
		"balance": balance.String(),
	})
}

type AdjustJSON struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

func (h *WalletRestHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var in AdjustJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.walletUC.Deposit(r.Context(), chi.URLParam(r, "accountID"), in.Asset, in.Amount, in.Note)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, txn)
}

func (h *WalletRestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var in AdjustJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.walletUC.Withdraw(r.Context(), chi.URLParam(r, "accountID"), in.Asset, in.Amount, in.Note)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, txn)
}

func (h *WalletRestHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	walletID, err := strconv.ParseInt(chi.URLParam(r, "walletID"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid wallet id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txns, total, err := h.ledgerUC.History(r.Context(), walletID, limit, offset)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"total":        total,
	})
}
