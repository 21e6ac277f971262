package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testUser() *User {
	u := &User{ID: "USER_0001", Name: "A", PIN: "1234", Accounts: make(map[AccountType]*Account)}
	u.AddAccount(Checking, decimal.Zero)
	return u
}

func TestSessionTimeout(t *testing.T) {
	s := NewSession(testUser(), 300*time.Second)
	if !s.IsValid() {
		t.Fatal("fresh session should be valid")
	}
	if s.Token == "" {
		t.Fatal("session token must be set")
	}

	s.StartedAt = time.Now().Add(-301 * time.Second)
	if s.IsValid() {
		t.Fatal("timed-out session should be invalid")
	}
	// timeout marks the session inactive as a side effect
	if s.Active {
		t.Fatal("timed-out session still active")
	}
}

func TestSessionExtend(t *testing.T) {
	s := NewSession(testUser(), 300*time.Second)
	s.StartedAt = time.Now().Add(-200 * time.Second)
	s.Extend()
	if time.Since(s.StartedAt) > time.Second {
		t.Fatal("Extend should reset the session clock")
	}
	if !s.IsValid() {
		t.Fatal("extended session should be valid")
	}
}

func TestSessionDeactivate(t *testing.T) {
	s := NewSession(testUser(), 300*time.Second)
	s.Deactivate()
	if s.IsValid() {
		t.Fatal("deactivated session should be invalid")
	}
}

// Ledger records snapshot the checking balance even when another account was
// the one that changed.
func TestTransactionSnapshotsCheckingBalance(t *testing.T) {
	u := testUser()
	u.Account(Checking).Deposit(d(75))
	u.AddAccount(Savings, d(900))

	s := NewSession(u, 300*time.Second)
	tx := s.newTransaction(TxDeposit, d(900), "Deposit to savings account", "")

	if !tx.BalanceAfter.Equal(d(75)) {
		t.Fatalf("balance_after=%s want checking balance 75", tx.BalanceAfter)
	}
	if tx.UserID != u.ID || tx.Type != TxDeposit {
		t.Fatalf("unexpected record: %+v", tx)
	}
	if tx.ID == "" {
		t.Fatal("transaction id must be set")
	}
}

func TestTransactionIDsUniqueUnderRapidSuccession(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTransactionID("USER_0001")
		if seen[id] {
			t.Fatalf("duplicate transaction id %q", id)
		}
		seen[id] = true
	}
}
