package main

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a one-way salted digest of the password. bcrypt
// embeds a random per-user salt in the digest, so equal passwords yield
// different digests; verification is always hash-and-compare via
// CheckPasswordHash.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type failedLogin struct {
	count       int
	lastAttempt time.Time
}

// SecurityManager tracks failed login attempts per user and enforces a
// time-boxed lockout: maxAttempts failures lock the user out until
// lockoutWindow has elapsed since the most recent failure.
type SecurityManager struct {
	mu            sync.Mutex
	attempts      map[string]failedLogin
	maxAttempts   int
	lockoutWindow time.Duration
}

func NewSecurityManager(maxAttempts int, lockoutWindow time.Duration) *SecurityManager {
	return &SecurityManager{
		attempts:      make(map[string]failedLogin),
		maxAttempts:   maxAttempts,
		lockoutWindow: lockoutWindow,
	}
}

// IsLockedOut reports whether the user is currently locked out. An expired
// lockout record is cleared here as a side effect, so the next attempt
// starts from a clean slate.
func (s *SecurityManager) IsLockedOut(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.attempts[userID]
	if !ok || rec.count < s.maxAttempts {
		return false
	}
	if time.Since(rec.lastAttempt) >= s.lockoutWindow {
		delete(s.attempts, userID)
		return false
	}
	return true
}

// RecordFailure increments the failure count and refreshes the timestamp,
// sliding the lockout window forward.
func (s *SecurityManager) RecordFailure(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.attempts[userID]
	rec.count++
	rec.lastAttempt = time.Now()
	s.attempts[userID] = rec
}

// Clear removes the failure record; called on any successful authentication.
func (s *SecurityManager) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, userID)
}
