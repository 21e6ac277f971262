package main

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestAccountPolicies(t *testing.T) {
	tests := []struct {
		accountType AccountType
		overdraft   float64
		dailyLimit  float64
	}{
		{Checking, 100, 500},
		{Savings, 0, 300},
		{Premium, 500, 1000},
	}

	for _, tt := range tests {
		a := NewAccount("USER_0001", tt.accountType, decimal.Zero)
		if !a.OverdraftLimit().Equal(d(tt.overdraft)) {
			t.Errorf("%s overdraft=%s want=%v", tt.accountType, a.OverdraftLimit(), tt.overdraft)
		}
		if !a.DailyLimit().Equal(d(tt.dailyLimit)) {
			t.Errorf("%s daily limit=%s want=%v", tt.accountType, a.DailyLimit(), tt.dailyLimit)
		}
		if want := "USER_0001_" + string(tt.accountType); a.ID != want {
			t.Errorf("account id=%q want=%q", a.ID, want)
		}
	}
}

func TestParseAccountType(t *testing.T) {
	if _, err := ParseAccountType("checking"); err != nil {
		t.Fatalf("checking should parse: %v", err)
	}
	if _, err := ParseAccountType("gold"); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestDepositRejectsNonPositive(t *testing.T) {
	a := NewAccount("u", Checking, d(100))

	for _, amount := range []float64{0, -5} {
		if err := a.Deposit(d(amount)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Deposit(%v): want ErrInvalidAmount, got %v", amount, err)
		}
		if !a.Balance.Equal(d(100)) {
			t.Fatalf("balance changed on rejected deposit: %s", a.Balance)
		}
	}

	if err := a.Deposit(d(50)); err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(d(150)) {
		t.Fatalf("balance=%s want=150", a.Balance)
	}
}

func TestWithdrawRules(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		amount  float64
		wantErr error
	}{
		{"negative amount", 100, -1, ErrInvalidAmount},
		{"zero amount", 100, 0, ErrInvalidAmount},
		{"over daily limit", 4500, 2000, ErrDailyLimitExceeded},
		{"beyond overdraft", 10, 200, ErrInsufficientFunds},
		{"into overdraft", 0, 50, nil},
		{"plain", 100, 40, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccount("u", Checking, d(tt.balance))
			err := a.Withdraw(d(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				// no mutation on failure
				if !a.Balance.Equal(d(tt.balance)) || !a.DailyWithdrawn.IsZero() {
					t.Fatalf("mutated on failure: balance=%s withdrawn=%s", a.Balance, a.DailyWithdrawn)
				}
				return
			}
			if !a.Balance.Equal(d(tt.balance - tt.amount)) {
				t.Fatalf("balance=%s want=%v", a.Balance, tt.balance-tt.amount)
			}
			if !a.DailyWithdrawn.Equal(d(tt.amount)) {
				t.Fatalf("daily withdrawn=%s want=%v", a.DailyWithdrawn, tt.amount)
			}
		})
	}
}

func TestOverdraftScenario(t *testing.T) {
	// checking at 0, overdraft 100: withdraw(50) lands at -50
	a := NewAccount("u", Checking, decimal.Zero)
	if err := a.Withdraw(d(50)); err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(d(-50)) {
		t.Fatalf("balance=%s want=-50", a.Balance)
	}

	// savings has no overdraft
	s := NewAccount("u", Savings, decimal.Zero)
	if err := s.Withdraw(d(1)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
}

func TestBalanceNeverBelowOverdraft(t *testing.T) {
	a := NewAccount("u", Premium, d(200))

	ops := []struct {
		deposit bool
		amount  float64
	}{
		{false, 300}, {true, 50}, {false, 400}, {false, 100}, {true, -10}, {false, 500}, {false, 250},
	}
	for _, op := range ops {
		if op.deposit {
			a.Deposit(d(op.amount))
		} else {
			a.Withdraw(d(op.amount))
		}
		if a.Balance.LessThan(a.OverdraftLimit().Neg()) {
			t.Fatalf("balance %s below -overdraft %s", a.Balance, a.OverdraftLimit())
		}
		if a.DailyWithdrawn.GreaterThan(a.DailyLimit()) {
			t.Fatalf("daily withdrawn %s above limit %s", a.DailyWithdrawn, a.DailyLimit())
		}
	}
}

func TestDailyLimitResetsAtDayBoundary(t *testing.T) {
	a := NewAccount("u", Checking, d(10000))
	if err := a.Withdraw(d(500)); err != nil {
		t.Fatal(err)
	}

	// same day: limit is spent
	if err := a.CanWithdraw(d(1)); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("want ErrDailyLimitExceeded, got %v", err)
	}
	if !a.DailyWithdrawn.Equal(d(500)) {
		t.Fatalf("counter reset mid-day: %s", a.DailyWithdrawn)
	}

	// next day: first check rolls the counter over
	a.LastResetDate = today().AddDate(0, 0, -1)
	if err := a.CanWithdraw(d(500)); err != nil {
		t.Fatalf("after rollover: %v", err)
	}
	if !a.DailyWithdrawn.IsZero() {
		t.Fatalf("daily withdrawn=%s want=0 after rollover", a.DailyWithdrawn)
	}
	if !a.LastResetDate.Equal(today()) {
		t.Fatalf("last reset date not advanced: %v", a.LastResetDate)
	}
}
