package main

import "sort"

// Ledger is the append-only log of all transactions across all users. It
// exclusively owns the sequence; records are never mutated after append.
type Ledger struct {
	transactions []Transaction
}

func NewLedger(transactions []Transaction) *Ledger {
	return &Ledger{transactions: transactions}
}

func (l *Ledger) Append(tx Transaction) {
	l.transactions = append(l.transactions, tx)
}

func (l *Ledger) Len() int {
	return len(l.transactions)
}

// All returns the full sequence in insertion order, for persistence.
func (l *Ledger) All() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// History returns up to limit records for the user, most recent first.
// Equal timestamps keep insertion order (the sort is stable).
func (l *Ledger) History(userID string, limit int) []Transaction {
	var out []Transaction
	for _, tx := range l.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
