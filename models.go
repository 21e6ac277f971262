package main

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string                   `json:"user_id"`
	Name         string                   `json:"name"`
	PIN          string                   `json:"-"`
	PasswordHash string                   `json:"-"`
	Email        string                   `json:"email,omitempty"`
	Phone        string                   `json:"phone,omitempty"`
	CreatedAt    time.Time                `json:"created_date"`
	LastLogin    time.Time                `json:"last_login,omitzero"`
	Accounts     map[AccountType]*Account `json:"accounts"`
}

// AddAccount creates an account of the given type, overwriting any existing
// account of that type. Callers that must preserve an existing account check
// first; the orchestrator does.
func (u *User) AddAccount(accountType AccountType, initialBalance decimal.Decimal) *Account {
	if u.Accounts == nil {
		u.Accounts = make(map[AccountType]*Account)
	}
	a := NewAccount(u.ID, accountType, initialBalance)
	u.Accounts[accountType] = a
	return a
}

func (u *User) Account(accountType AccountType) *Account {
	return u.Accounts[accountType]
}

// Clone deep-copies the user, accounts included. Responses are built from
// clones so they can be read without holding the orchestrator's lock.
func (u *User) Clone() User {
	cp := *u
	cp.Accounts = make(map[AccountType]*Account, len(u.Accounts))
	for accountType, a := range u.Accounts {
		ac := *a
		cp.Accounts[accountType] = &ac
	}
	return cp
}

func (u *User) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range u.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// UpdateProfile applies a partial update of the contact fields. Empty fields
// are left untouched. PIN and password changes are separate privileged
// operations on the orchestrator.
func (u *User) UpdateProfile(name, email, phone string) {
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if phone != "" {
		u.Phone = phone
	}
}

type TransactionType string

const (
	TxDeposit        TransactionType = "deposit"
	TxWithdrawal     TransactionType = "withdrawal"
	TxTransfer       TransactionType = "transfer"
	TxBalanceInquiry TransactionType = "balance_inquiry"
	TxPinChange      TransactionType = "pin_change"
)

// Transaction is an immutable ledger record. BalanceAfter snapshots the
// user's checking-account balance at record time, even when the mutated
// account is savings or premium. That is long-standing recorded behavior;
// statements are generated against it, so it stays until product says
// otherwise.
type Transaction struct {
	ID           string          `json:"transaction_id"`
	UserID       string          `json:"user_id"`
	Type         TransactionType `json:"transaction_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description"`
	ToUser       string          `json:"to_user,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	PIN      string `json:"pin"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	PIN      string `json:"pin"`
	Password string `json:"password"`
}

type AmountRequest struct {
	AccountType string          `json:"account_type"`
	Amount      decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	ToUserID    string          `json:"to_user_id"`
	AccountType string          `json:"account_type"`
	Amount      decimal.Decimal `json:"amount"`
}

type ConfirmTransferRequest struct {
	Token string `json:"token"`
}

type AddAccountRequest struct {
	AccountType string `json:"account_type"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ChangePinRequest struct {
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
