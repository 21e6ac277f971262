package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PendingTransfer is a proposed transfer awaiting explicit confirmation.
// Intents are ephemeral: single-use, expire after a short TTL, and are never
// persisted.
type PendingTransfer struct {
	Token       string          `json:"token"`
	FromUserID  string          `json:"-"`
	AccountType AccountType     `json:"account_type"`
	ToUserID    string          `json:"to_user_id"`
	ToUserName  string          `json:"to_user_name"`
	Amount      decimal.Decimal `json:"amount"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// ATM is the orchestrator. It owns all live state: the user registry, the
// ledger, the session registry, failed-login tracking, and the persistence
// collaborator. One mutex serializes every read-check-mutate sequence, so
// transfers and withdrawals are atomic from any caller's perspective.
type ATM struct {
	mu        sync.Mutex
	cfg       *Config
	store     *Store
	security  *SecurityManager
	ledger    *Ledger
	users     map[string]*User
	sessions  map[string]*Session // keyed by user ID
	tokens    map[string]string   // session token -> user ID
	pending   map[string]*PendingTransfer
	startedAt time.Time
}

// NewATM loads durable state through the store and builds a ready orchestrator.
func NewATM(cfg *Config, store *Store) (*ATM, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &ATM{
		cfg:       cfg,
		store:     store,
		security:  NewSecurityManager(cfg.MaxLoginAttempts, time.Duration(cfg.LockoutSeconds)*time.Second),
		ledger:    NewLedger(state.Transactions),
		users:     state.Users,
		sessions:  make(map[string]*Session),
		tokens:    make(map[string]string),
		pending:   make(map[string]*PendingTransfer),
		startedAt: time.Now(),
	}, nil
}

// persistLocked writes the whole state through the store. On failure the
// in-memory state is NOT rolled back; memory and disk have diverged, which
// is surfaced here rather than silently accepted.
func (a *ATM) persistLocked() error {
	if err := a.store.Save(a.users, a.ledger.All()); err != nil {
		persistenceErrorsTotal.Inc()
		log.Printf("PERSISTENCE FAILURE, in-memory state diverges from disk: %v", err)
		return err
	}
	return nil
}

// recordLocked appends a ledger record for the session user. Durability is
// the caller's job: every mutating operation persists exactly once, after
// all of its mutations.
func (a *ATM) recordLocked(s *Session, txType TransactionType, amount decimal.Decimal, description, toUser string) Transaction {
	tx := s.newTransaction(txType, amount, description, toUser)
	a.ledger.Append(tx)
	transactionsTotal.WithLabelValues(string(txType)).Inc()
	return tx
}

// Register creates a user with a zero-balance checking account.
//
// Like every mutating operation, this returns a detached copy: the live
// objects stay behind the mutex, so callers can marshal the result while
// other requests keep mutating state.
func (a *ATM) Register(name, pin, password, email, phone string) (User, error) {
	if len(pin) != 4 || !IsDigits(pin) {
		return User{}, fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
	}
	if len(password) < 6 {
		return User{}, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	user := &User{
		ID:           NewUserID(len(a.users) + 1),
		Name:         name,
		PIN:          pin,
		PasswordHash: hash,
		Email:        email,
		Phone:        phone,
		CreatedAt:    time.Now(),
		Accounts:     make(map[AccountType]*Account),
	}
	user.AddAccount(Checking, decimal.Zero)

	a.users[user.ID] = user
	if err := a.persistLocked(); err != nil {
		return User{}, err
	}

	log.Printf("user registered: %s (%s)", user.ID, user.Name)
	return user.Clone(), nil
}

// Authenticate verifies both factors and opens a session. A lockout is
// checked first and short-circuits without touching credentials. A mismatch
// of either factor records one failure and is not distinguished to the
// caller. The returned User is a detached copy taken under the lock.
func (a *ATM) Authenticate(userID, pin, password string) (*Session, User, error) {
	if a.security.IsLockedOut(userID) {
		lockoutsTotal.Inc()
		log.Printf("locked out: %s", userID)
		return nil, User{}, ErrLockedOut
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	user, ok := a.users[userID]
	if !ok {
		return nil, User{}, ErrNotFound
	}

	if user.PIN != pin || !CheckPasswordHash(password, user.PasswordHash) {
		a.security.RecordFailure(userID)
		authFailuresTotal.Inc()
		log.Printf("authentication failed: %s", userID)
		return nil, User{}, ErrInvalidCredentials
	}

	a.security.Clear(userID)
	user.LastLogin = time.Now()
	if err := a.persistLocked(); err != nil {
		return nil, User{}, err
	}

	if old, ok := a.sessions[userID]; ok {
		delete(a.tokens, old.Token)
		delete(a.sessions, userID)
		activeSessions.Dec()
	}

	session := NewSession(user, time.Duration(a.cfg.SessionSeconds)*time.Second)
	a.sessions[userID] = session
	a.tokens[session.Token] = userID
	activeSessions.Inc()

	log.Printf("user authenticated: %s", userID)
	return session, user.Clone(), nil
}

// SessionByToken resolves and slides a live session. An expired or
// deactivated session is dropped from the registry here, on next use.
func (a *ATM) SessionByToken(token string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	userID, ok := a.tokens[token]
	if !ok {
		return nil, ErrSessionExpired
	}
	session := a.sessions[userID]
	if session == nil || !session.IsValid() {
		a.dropSessionLocked(userID, token)
		return nil, ErrSessionExpired
	}
	session.Extend()
	return session, nil
}

func (a *ATM) dropSessionLocked(userID, token string) {
	if _, ok := a.sessions[userID]; ok {
		delete(a.sessions, userID)
		activeSessions.Dec()
	}
	delete(a.tokens, token)
}

func (a *ATM) Logout(session *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	session.Deactivate()
	a.dropSessionLocked(session.User.ID, session.Token)
	log.Printf("user logged out: %s", session.User.ID)
}

// Balances reports all account balances and records a balance inquiry in the
// ledger.
func (a *ATM) Balances(session *Session) (map[AccountType]decimal.Decimal, decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	balances := make(map[AccountType]decimal.Decimal, len(session.User.Accounts))
	for accountType, account := range session.User.Accounts {
		balances[accountType] = account.Balance
	}

	a.recordLocked(session, TxBalanceInquiry, decimal.Zero, "Balance inquiry", "")
	if err := a.persistLocked(); err != nil {
		return nil, decimal.Zero, err
	}
	return balances, session.User.TotalBalance(), nil
}

func (a *ATM) Deposit(session *Session, accountType AccountType, amount decimal.Decimal) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	account := session.User.Account(accountType)
	if account == nil {
		return Account{}, ErrAccountNotFound
	}
	if err := account.Deposit(amount); err != nil {
		return Account{}, err
	}

	a.recordLocked(session, TxDeposit, amount, fmt.Sprintf("Deposit to %s account", accountType), "")
	if err := a.persistLocked(); err != nil {
		return Account{}, err
	}

	log.Printf("deposit: user=%s account=%s amount=%s", session.User.ID, accountType, amount.StringFixed(2))
	return *account, nil
}

func (a *ATM) Withdraw(session *Session, accountType AccountType, amount decimal.Decimal) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	account := session.User.Account(accountType)
	if account == nil {
		return Account{}, ErrAccountNotFound
	}
	if err := account.Withdraw(amount); err != nil {
		return Account{}, err
	}

	a.recordLocked(session, TxWithdrawal, amount, fmt.Sprintf("Withdrawal from %s account", accountType), "")
	if err := a.persistLocked(); err != nil {
		return Account{}, err
	}

	log.Printf("withdrawal: user=%s account=%s amount=%s", session.User.ID, accountType, amount.StringFixed(2))
	return *account, nil
}

// ProposeTransfer validates a transfer and parks it as a pending intent.
// Nothing moves until ConfirmTransfer; the checks run again there, since
// balances may change in between.
func (a *ATM) ProposeTransfer(session *Session, toUserID string, accountType AccountType, amount decimal.Decimal) (*PendingTransfer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	recipient, ok := a.users[toUserID]
	if !ok {
		return nil, ErrNotFound
	}
	account := session.User.Account(accountType)
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if err := account.CanWithdraw(amount); err != nil {
		return nil, err
	}

	// sweep intents that were proposed but never confirmed
	now := time.Now()
	for token, stale := range a.pending {
		if now.After(stale.ExpiresAt) {
			delete(a.pending, token)
		}
	}

	pt := &PendingTransfer{
		Token:       GenerateToken(),
		FromUserID:  session.User.ID,
		AccountType: accountType,
		ToUserID:    toUserID,
		ToUserName:  recipient.Name,
		Amount:      amount,
		ExpiresAt:   now.Add(time.Duration(a.cfg.PendingTransferTTL) * time.Second),
	}
	a.pending[pt.Token] = pt
	return pt, nil
}

// ConfirmTransfer commits a pending intent: withdraws from the source
// account, deposits into the recipient's checking account (creating it if
// absent), appends one transfer record on the sender's side, and persists
// both users in a single snapshot write. Either both balances change or
// neither does.
func (a *ATM) ConfirmTransfer(session *Session, token string) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pt, ok := a.pending[token]
	if !ok || pt.FromUserID != session.User.ID {
		return Account{}, ErrTransferNotFound
	}
	delete(a.pending, token) // single use, confirmed or not

	if time.Now().After(pt.ExpiresAt) {
		return Account{}, ErrTransferExpired
	}

	recipient, ok := a.users[pt.ToUserID]
	if !ok {
		return Account{}, ErrNotFound
	}
	account := session.User.Account(pt.AccountType)
	if account == nil {
		return Account{}, ErrAccountNotFound
	}

	if err := account.Withdraw(pt.Amount); err != nil {
		return Account{}, err
	}
	target := recipient.Account(Checking)
	if target == nil {
		target = recipient.AddAccount(Checking, decimal.Zero)
	}
	if err := target.Deposit(pt.Amount); err != nil {
		// Withdraw succeeded, so a positive amount is guaranteed here.
		return Account{}, err
	}

	a.recordLocked(session, TxTransfer, pt.Amount, fmt.Sprintf("Transfer to %s", recipient.Name), pt.ToUserID)
	if err := a.persistLocked(); err != nil {
		return Account{}, err
	}

	log.Printf("transfer: from=%s to=%s amount=%s", session.User.ID, pt.ToUserID, pt.Amount.StringFixed(2))
	return *account, nil
}

func (a *ATM) History(session *Session, limit int) []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		limit = a.cfg.HistoryLimit
	}
	return a.ledger.History(session.User.ID, limit)
}

// OpenAccount adds an account of the given type at zero balance. Unlike
// User.AddAccount, an existing account of that type is preserved and the
// call rejected.
func (a *ATM) OpenAccount(session *Session, accountType AccountType) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if session.User.Account(accountType) != nil {
		return Account{}, ErrAccountExists
	}
	account := session.User.AddAccount(accountType, decimal.Zero)
	if err := a.persistLocked(); err != nil {
		return Account{}, err
	}

	log.Printf("account opened: user=%s type=%s", session.User.ID, accountType)
	return *account, nil
}

func (a *ATM) AccountsOf(session *Session) []*Account {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*Account, 0, len(session.User.Accounts))
	for _, account := range session.User.Accounts {
		cp := *account
		out = append(out, &cp)
	}
	return out
}

func (a *ATM) UpdateProfile(session *Session, name, email, phone string) (User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	session.User.UpdateProfile(name, email, phone)
	if err := a.persistLocked(); err != nil {
		return User{}, err
	}
	return session.User.Clone(), nil
}

// ChangePIN requires the current PIN; re-authentication of the credential
// being replaced, not of the session.
func (a *ATM) ChangePIN(session *Session, currentPIN, newPIN string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if session.User.PIN != currentPIN {
		return ErrInvalidCredentials
	}
	if len(newPIN) != 4 || !IsDigits(newPIN) {
		return fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
	}

	session.User.PIN = newPIN
	a.recordLocked(session, TxPinChange, decimal.Zero, "PIN changed", "")
	if err := a.persistLocked(); err != nil {
		return err
	}

	log.Printf("PIN changed: %s", session.User.ID)
	return nil
}

func (a *ATM) ChangePassword(session *Session, currentPassword, newPassword string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !CheckPasswordHash(currentPassword, session.User.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	session.User.PasswordHash = hash
	if err := a.persistLocked(); err != nil {
		return err
	}

	log.Printf("password changed: %s", session.User.ID)
	return nil
}

type SystemStats struct {
	TotalUsers        int    `json:"total_users"`
	TotalTransactions int    `json:"total_transactions"`
	ActiveSessions    int    `json:"active_sessions"`
	Uptime            string `json:"uptime"`
	Status            string `json:"status"`
}

func (a *ATM) Stats() SystemStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	// evict sessions that timed out without their token ever being
	// presented again, same as the expired-intent sweep in ProposeTransfer
	for userID, s := range a.sessions {
		if !s.IsValid() {
			a.dropSessionLocked(userID, s.Token)
		}
	}
	return SystemStats{
		TotalUsers:        len(a.users),
		TotalTransactions: a.ledger.Len(),
		ActiveSessions:    len(a.sessions),
		Uptime:            time.Since(a.startedAt).Round(time.Second).String(),
		Status:            "online",
	}
}
