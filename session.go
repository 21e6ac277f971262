package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is a time-bounded authenticated context binding a user to ledger
// and account operations. Expiry is checked lazily on use; there is no
// background timer.
type Session struct {
	User      *User
	Token     string
	StartedAt time.Time
	Active    bool
	Timeout   time.Duration
}

func NewSession(user *User, timeout time.Duration) *Session {
	return &Session{
		User:      user,
		Token:     GenerateToken(),
		StartedAt: time.Now(),
		Active:    true,
		Timeout:   timeout,
	}
}

// IsValid reports whether the session is usable. A timed-out session is
// marked inactive as a side effect.
func (s *Session) IsValid() bool {
	if !s.Active {
		return false
	}
	if time.Since(s.StartedAt) > s.Timeout {
		s.Active = false
		return false
	}
	return true
}

// Extend resets the session clock (sliding expiration).
func (s *Session) Extend() {
	s.StartedAt = time.Now()
}

func (s *Session) Deactivate() {
	s.Active = false
}

// newTransaction builds a ledger record for the session user. BalanceAfter
// snapshots the checking-account balance regardless of which account the
// operation touched (see Transaction).
func (s *Session) newTransaction(txType TransactionType, amount decimal.Decimal, description, toUser string) Transaction {
	balanceAfter := decimal.Zero
	if checking := s.User.Account(Checking); checking != nil {
		balanceAfter = checking.Balance
	}
	return Transaction{
		ID:           NewTransactionID(s.User.ID),
		UserID:       s.User.ID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Timestamp:    time.Now(),
		Description:  description,
		ToUser:       toUser,
	}
}
