package hrest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KelechiEze/paykoin-sub000/internal/usecase"
	"github.com/KelechiEze/paykoin-sub000/pkg/response"
)

type AccountRestHandler struct {
	accountUC *usecase.AccountUsecase
	walletUC  *usecase.WalletUsecase
}

func NewAccountRestHandler(accountUC *usecase.AccountUsecase, walletUC *usecase.WalletUsecase) *AccountRestHandler {
	return &AccountRestHandler{accountUC: accountUC, walletUC: walletUC}
}

type SignupJSON struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (h *AccountRestHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in SignupJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accountUC.Signup(r.Context(), in.Email, in.DisplayName)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, account)
}

func (h *AccountRestHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetByID(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, account)
}

func (h *AccountRestHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletUC.ListWallets(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, wallets)
}
