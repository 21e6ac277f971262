package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
	Premium  AccountType = "premium"
)

// ParseAccountType validates the wire/user representation of an account type.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case Checking, Savings, Premium:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("%w: unknown account type %q", ErrValidation, s)
}

// accountPolicy is fixed per account type and known at creation time.
type accountPolicy struct {
	OverdraftLimit decimal.Decimal
	DailyLimit     decimal.Decimal
}

var accountPolicies = map[AccountType]accountPolicy{
	Checking: {OverdraftLimit: decimal.NewFromInt(100), DailyLimit: decimal.NewFromInt(500)},
	Savings:  {OverdraftLimit: decimal.Zero, DailyLimit: decimal.NewFromInt(300)},
	Premium:  {OverdraftLimit: decimal.NewFromInt(500), DailyLimit: decimal.NewFromInt(1000)},
}

// Account is a single balance-bearing entity. Balance may go negative down
// to -OverdraftLimit; cumulative withdrawals within one calendar day may not
// exceed DailyLimit. The counter resets lazily on the first check after the
// local date advances.
type Account struct {
	ID             string          `json:"account_id"`
	Type           AccountType     `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	DailyWithdrawn decimal.Decimal `json:"daily_withdrawn"`
	LastResetDate  time.Time       `json:"last_reset_date"`
}

func NewAccount(userID string, accountType AccountType, initialBalance decimal.Decimal) *Account {
	return &Account{
		ID:             fmt.Sprintf("%s_%s", userID, accountType),
		Type:           accountType,
		Balance:        initialBalance,
		DailyWithdrawn: decimal.Zero,
		LastResetDate:  today(),
	}
}

func (a *Account) Policy() accountPolicy {
	return accountPolicies[a.Type]
}

func (a *Account) OverdraftLimit() decimal.Decimal {
	return a.Policy().OverdraftLimit
}

func (a *Account) DailyLimit() decimal.Decimal {
	return a.Policy().DailyLimit
}

// resetDailyIfNeeded zeroes the daily counter once the local date advances
// past LastResetDate. Never resets mid-day.
func (a *Account) resetDailyIfNeeded() {
	if t := today(); t.After(a.LastResetDate) {
		a.DailyWithdrawn = decimal.Zero
		a.LastResetDate = t
	}
}

// CanWithdraw reports whether a withdrawal of amount is allowed. The daily
// counter is rolled over first, so a rejection reason always reflects the
// current day.
func (a *Account) CanWithdraw(amount decimal.Decimal) error {
	a.resetDailyIfNeeded()

	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if a.DailyWithdrawn.Add(amount).GreaterThan(a.DailyLimit()) {
		return fmt.Errorf("%w: limit %s", ErrDailyLimitExceeded, a.DailyLimit().StringFixed(2))
	}
	if amount.GreaterThan(a.Balance.Add(a.OverdraftLimit())) {
		return ErrInsufficientFunds
	}
	return nil
}

// Withdraw re-runs CanWithdraw and mutates only on success. It is not
// transactional with any other account; callers sequence multi-account
// operations themselves.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := a.CanWithdraw(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Sub(amount)
	a.DailyWithdrawn = a.DailyWithdrawn.Add(amount)
	return nil
}

// Deposit rejects non-positive amounts without mutating.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// today is the local calendar date at midnight, the granularity at which
// daily limits reset.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
