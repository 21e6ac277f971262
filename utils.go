package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// GenerateToken returns an opaque token for sessions and pending transfers.
func GenerateToken() string {
	return uuid.NewString()
}

// NewUserID formats the sequential user identifier.
func NewUserID(seq int) string {
	return fmt.Sprintf("USER_%04d", seq)
}

var lastTxNanos atomic.Int64

// NewTransactionID derives a transaction identifier from the owning user and
// a nanosecond timestamp. The timestamp is bumped past the last one handed
// out, so IDs stay unique even when the clock ticks coarser than calls come
// in.
func NewTransactionID(userID string) string {
	for {
		prev := lastTxNanos.Load()
		nanos := time.Now().UnixNano()
		if nanos <= prev {
			nanos = prev + 1
		}
		if lastTxNanos.CompareAndSwap(prev, nanos) {
			return fmt.Sprintf("%s_%d", userID, nanos)
		}
	}
}

// IsDigits reports whether s is non-empty and entirely ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
