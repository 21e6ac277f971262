package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

const sessionHeader = "X-Session-Token"

type API struct {
	atm *ATM
}

func NewAPI(atm *ATM) *API {
	return &API{atm: atm}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, code int, message string) {
	log.Printf("HTTP Error %d: %s", code, message)
	respondJSON(w, code, map[string]string{"error": message})
}

// respondDomainError maps the domain error taxonomy onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrLockedOut):
		status = http.StatusLocked
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransferNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAccountExists):
		status = http.StatusConflict
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrDailyLimitExceeded):
		status = http.StatusPaymentRequired
	case errors.Is(err, ErrTransferExpired):
		status = http.StatusGone
	}
	respondError(w, status, err.Error())
}

// session resolves the authenticated session from the request header. On
// failure it has already written the response.
func (api *API) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	token := r.Header.Get(sessionHeader)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Missing "+sessionHeader+" header")
		return nil, false
	}
	session, err := api.atm.SessionByToken(token)
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}
	return session, true
}

func (api *API) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	user, err := api.atm.Register(req.Name, req.PIN, req.Password, req.Email, req.Phone)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if user.Email != "" {
		go func() {
			subject := "Welcome to ATM Banking"
			body := fmt.Sprintf("Hello %s,\n\nYour account %s is ready. Remember your user ID, PIN and password.", user.Name, user.ID)
			if err := SendEmailNotification(user.Email, subject, body); err != nil {
				log.Printf("Failed to send registration email to %s: %v", user.Email, err)
			}
		}()
	}

	respondJSON(w, http.StatusCreated, user)
}

func (api *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	session, user, err := api.atm.Authenticate(req.UserID, req.PIN, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID,
		"name":    user.Name,
		"token":   session.Token,
	})
}

func (api *API) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}
	api.atm.Logout(session)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (api *API) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	balances, total, err := api.atm.Balances(session)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balances":      balances,
		"total_balance": total,
	})
}

func (api *API) amountRequest(w http.ResponseWriter, r *http.Request) (AccountType, decimal.Decimal, bool) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return "", decimal.Zero, false
	}
	defer r.Body.Close()

	accountType, err := ParseAccountType(req.AccountType)
	if err != nil {
		respondDomainError(w, err)
		return "", decimal.Zero, false
	}
	return accountType, req.Amount, true
}

func (api *API) DepositHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}
	accountType, amount, ok := api.amountRequest(w, r)
	if !ok {
		return
	}

	account, err := api.atm.Deposit(session, accountType, amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (api *API) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}
	accountType, amount, ok := api.amountRequest(w, r)
	if !ok {
		return
	}

	account, err := api.atm.Withdraw(session, accountType, amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (api *API) ProposeTransferHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	accountType, err := ParseAccountType(req.AccountType)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	pt, err := api.atm.ProposeTransfer(session, req.ToUserID, accountType, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, pt)
}

func (api *API) ConfirmTransferHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req ConfirmTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	account, err := api.atm.ConfirmTransfer(session, req.Token)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (api *API) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	transactions := api.atm.History(session, limit)
	if transactions == nil {
		transactions = []Transaction{}
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (api *API) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req AddAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	accountType, err := ParseAccountType(req.AccountType)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	account, err := api.atm.OpenAccount(session, accountType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (api *API) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, api.atm.AccountsOf(session))
}

func (api *API) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := api.atm.UpdateProfile(session, req.Name, req.Email, req.Phone)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (api *API) ChangePinHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req ChangePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := api.atm.ChangePIN(session, req.CurrentPIN, req.NewPIN); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "PIN updated"})
}

func (api *API) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.session(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := api.atm.ChangePassword(session, req.CurrentPassword, req.NewPassword); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (api *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.atm.Stats())
}

func (api *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
