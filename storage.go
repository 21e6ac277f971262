package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Store is the persistence collaborator: it loads the whole state at startup
// and writes the whole state back after every mutating operation. Writes go
// to a temp file first and are renamed into place, so a crash mid-write never
// leaves a syntactically invalid store behind.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// State is the full durable state of the system.
type State struct {
	Users        map[string]*User
	Transactions []Transaction
}

type snapshot struct {
	Users        map[string]userRecord `json:"users"`
	Transactions []Transaction         `json:"transactions"`
}

type userRecord struct {
	UserID       string                   `json:"user_id"`
	Name         string                   `json:"name"`
	PIN          string                   `json:"pin"`
	PasswordHash string                   `json:"password_hash"`
	Email        string                   `json:"email"`
	Phone        string                   `json:"phone"`
	CreatedDate  string                   `json:"created_date"`
	LastLogin    string                   `json:"last_login,omitempty"`
	Accounts     map[string]accountRecord `json:"accounts"`
}

type accountRecord struct {
	AccountID      string          `json:"account_id"`
	Balance        decimal.Decimal `json:"balance"`
	DailyWithdrawn decimal.Decimal `json:"daily_withdrawn"`
	LastResetDate  string          `json:"last_reset_date"`
}

// Load reads the snapshot at the store path. A missing file is not an
// error: it yields an empty state, as on first boot.
func (s *Store) Load() (*State, error) {
	state := &State{Users: make(map[string]*User)}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("%w: opening %s: %v", ErrPersistence, s.path, err)
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrPersistence, s.path, err)
	}

	for id, rec := range snap.Users {
		user, err := rec.toUser()
		if err != nil {
			return nil, fmt.Errorf("%w: user %s: %v", ErrPersistence, id, err)
		}
		state.Users[id] = user
	}
	state.Transactions = snap.Transactions
	return state, nil
}

// Save serializes the whole state and atomically replaces the store file.
func (s *Store) Save(users map[string]*User, transactions []Transaction) error {
	snap := snapshot{
		Users:        make(map[string]userRecord, len(users)),
		Transactions: transactions,
	}
	if snap.Transactions == nil {
		snap.Transactions = []Transaction{}
	}
	for id, user := range users {
		snap.Users[id] = toUserRecord(user)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrPersistence, tmp, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("%w: encoding snapshot: %v", ErrPersistence, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrPersistence, s.path, err)
	}
	return nil
}

func toUserRecord(u *User) userRecord {
	rec := userRecord{
		UserID:       u.ID,
		Name:         u.Name,
		PIN:          u.PIN,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Phone:        u.Phone,
		CreatedDate:  u.CreatedAt.Format(time.RFC3339Nano),
		Accounts:     make(map[string]accountRecord, len(u.Accounts)),
	}
	if !u.LastLogin.IsZero() {
		rec.LastLogin = u.LastLogin.Format(time.RFC3339Nano)
	}
	for accountType, a := range u.Accounts {
		rec.Accounts[string(accountType)] = accountRecord{
			AccountID:      a.ID,
			Balance:        a.Balance,
			DailyWithdrawn: a.DailyWithdrawn,
			LastResetDate:  a.LastResetDate.Format(dateLayout),
		}
	}
	return rec
}

func (rec userRecord) toUser() (*User, error) {
	user := &User{
		ID:           rec.UserID,
		Name:         rec.Name,
		PIN:          rec.PIN,
		PasswordHash: rec.PasswordHash,
		Email:        rec.Email,
		Phone:        rec.Phone,
		Accounts:     make(map[AccountType]*Account, len(rec.Accounts)),
	}

	var err error
	if rec.CreatedDate != "" {
		if user.CreatedAt, err = time.Parse(time.RFC3339Nano, rec.CreatedDate); err != nil {
			return nil, fmt.Errorf("created_date: %v", err)
		}
	}
	if rec.LastLogin != "" {
		if user.LastLogin, err = time.Parse(time.RFC3339Nano, rec.LastLogin); err != nil {
			return nil, fmt.Errorf("last_login: %v", err)
		}
	}

	for typeName, ar := range rec.Accounts {
		accountType, err := ParseAccountType(typeName)
		if err != nil {
			return nil, err
		}
		lastReset, err := time.ParseInLocation(dateLayout, ar.LastResetDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("last_reset_date: %v", err)
		}
		user.Accounts[accountType] = &Account{
			ID:             ar.AccountID,
			Type:           accountType,
			Balance:        ar.Balance,
			DailyWithdrawn: ar.DailyWithdrawn,
			LastResetDate:  lastReset,
		}
	}
	return user, nil
}
