package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func txAt(id, userID string, ts time.Time) Transaction {
	return Transaction{
		ID:        id,
		UserID:    userID,
		Type:      TxDeposit,
		Amount:    decimal.NewFromInt(1),
		Timestamp: ts,
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	l := NewLedger(nil)
	base := time.Now()
	l.Append(txAt("t1", "u1", base.Add(1*time.Second)))
	l.Append(txAt("t2", "u1", base.Add(3*time.Second)))
	l.Append(txAt("t3", "u1", base.Add(2*time.Second)))

	got := l.History("u1", 10)
	want := []string{"t2", "t3", "t1"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("history[%d]=%s want=%s", i, got[i].ID, id)
		}
	}
}

func TestHistoryTiesKeepInsertionOrder(t *testing.T) {
	l := NewLedger(nil)
	ts := time.Now()
	l.Append(txAt("first", "u1", ts))
	l.Append(txAt("second", "u1", ts))

	got := l.History("u1", 10)
	if got[0].ID != "first" || got[1].ID != "second" {
		t.Fatalf("tie order: got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestHistoryIsolatedPerUser(t *testing.T) {
	l := NewLedger(nil)
	now := time.Now()
	l.Append(txAt("a", "u1", now))
	l.Append(txAt("b", "u2", now))
	l.Append(txAt("c", "u1", now))

	for _, tx := range l.History("u1", 10) {
		if tx.UserID != "u1" {
			t.Fatalf("foreign transaction in history: %+v", tx)
		}
	}
	if n := len(l.History("u1", 10)); n != 2 {
		t.Fatalf("len=%d want=2", n)
	}
}

func TestHistoryLimit(t *testing.T) {
	l := NewLedger(nil)
	base := time.Now()
	for i := 0; i < 15; i++ {
		l.Append(txAt(NewTransactionID("u1"), "u1", base.Add(time.Duration(i)*time.Second)))
	}

	got := l.History("u1", 10)
	if len(got) != 10 {
		t.Fatalf("len=%d want=10", len(got))
	}
	// the newest records survive the cut
	if !got[0].Timestamp.Equal(base.Add(14 * time.Second)) {
		t.Fatalf("newest record missing: %v", got[0].Timestamp)
	}
}
