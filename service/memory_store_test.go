package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lotto/events"
	"lotto/models"
)

// memoryStore is an in-memory ledger that behaves like the Postgres unit of work:
// one unit of work at a time, snapshot on Begin, restore on Rollback.
type memoryStore struct {
	mu sync.Mutex

	accounts  map[string]*models.Account
	rows      []*models.WagerRow
	history   []*models.BalanceHistory
	published []events.Event
	nextID    int64

	failInsert        error
	failUpdateBalance error
	failCommit        error
}

type memorySnapshot struct {
	accounts map[string]models.Account
	rows     []models.WagerRow
	history  int
	nextID   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: make(map[string]*models.Account)}
}

func (s *memoryStore) addAccount(username string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.accounts[username] = &models.Account{ID: s.nextID, Username: username, Balance: balance}
}

func (s *memoryStore) balance(username string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[username].Balance
}

// ledgerNet sums win - bet over every row of the user
func (s *memoryStore) ledgerNet(username string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var net int64
	for _, r := range s.rows {
		if r.Username == username {
			net += r.Net()
		}
	}
	return net
}

func (s *memoryStore) rowsOf(username string) []models.WagerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WagerRow
	for _, r := range s.rows {
		if r.Username == username {
			out = append(out, *r)
		}
	}
	return out
}

func (s *memoryStore) eventTypes() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.EventType
	for _, e := range s.published {
		out = append(out, e.Type())
	}
	return out
}

func (s *memoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		accounts: make(map[string]models.Account, len(s.accounts)),
		history:  len(s.history),
		nextID:   s.nextID,
	}
	for k, v := range s.accounts {
		snap.accounts[k] = *v
	}
	for _, r := range s.rows {
		snap.rows = append(snap.rows, *r)
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.accounts = make(map[string]*models.Account, len(snap.accounts))
	for k, v := range snap.accounts {
		acc := v
		s.accounts[k] = &acc
	}
	s.rows = nil
	for i := range snap.rows {
		row := snap.rows[i]
		s.rows = append(s.rows, &row)
	}
	s.history = s.history[:snap.history]
	s.nextID = snap.nextID
}

func (s *memoryStore) Create() UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

type memoryUnitOfWork struct {
	store   *memoryStore
	active  bool
	snap    memorySnapshot
	pending []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	u.snap = u.store.snapshot()
	u.active = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	if u.store.failCommit != nil {
		return u.store.failCommit
	}
	u.store.published = append(u.store.published, u.pending...)
	u.pending = nil
	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.store.restore(u.snap)
	u.pending = nil
	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *memoryUnitOfWork) AccountRepository() AccountRepository {
	return &memoryAccountRepository{store: u.store}
}

func (u *memoryUnitOfWork) WagerRepository() WagerRepository {
	return &memoryWagerRepository{store: u.store}
}

func (u *memoryUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return &memoryBalanceHistoryRepository{store: u.store}
}

func (u *memoryUnitOfWork) EventBus() EventPublisher {
	return u
}

func (u *memoryUnitOfWork) Publish(event events.Event) {
	u.pending = append(u.pending, event)
}

// The repositories below run with store.mu already held by the unit of work.

type memoryAccountRepository struct {
	store *memoryStore
}

func (r *memoryAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	acc, ok := r.store.accounts[username]
	if !ok {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

func (r *memoryAccountRepository) LockByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.GetByUsername(ctx, username)
}

func (r *memoryAccountRepository) Create(ctx context.Context, username string, passwordHash *string, initialBalance int64) (*models.Account, error) {
	if _, ok := r.store.accounts[username]; ok {
		return nil, ErrUsernameTaken
	}
	r.store.nextID++
	acc := &models.Account{
		ID:           r.store.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      initialBalance,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.store.accounts[username] = acc
	copied := *acc
	return &copied, nil
}

func (r *memoryAccountRepository) UpdateBalance(ctx context.Context, username string, newBalance int64) error {
	if r.store.failUpdateBalance != nil {
		return r.store.failUpdateBalance
	}
	acc, ok := r.store.accounts[username]
	if !ok {
		return ErrAccountNotFound
	}
	acc.Balance = newBalance
	return nil
}

type memoryWagerRepository struct {
	store *memoryStore
}

func matchesPlay(row *models.WagerRow, key models.PlayKey) bool {
	return row.Kind == models.RowKindWager &&
		row.Username == key.Username &&
		row.PlayTime.Equal(key.PlayTime) &&
		row.Draw == key.Draw
}

func (r *memoryWagerRepository) InsertRows(ctx context.Context, rows []*models.WagerRow) error {
	if r.store.failInsert != nil {
		return r.store.failInsert
	}
	for _, row := range rows {
		if row.Kind == models.RowKindRefund {
			for _, existing := range r.store.rows {
				if existing.Kind == models.RowKindRefund &&
					existing.Username == row.Username &&
					existing.RefPlayTime.Equal(*row.RefPlayTime) {
					return ErrAlreadyRefunded
				}
			}
		}
		r.store.nextID++
		row.ID = r.store.nextID
		row.CreatedAt = time.Now()
		copied := *row
		r.store.rows = append(r.store.rows, &copied)
	}
	return nil
}

func (r *memoryWagerRepository) SumByPlay(ctx context.Context, key models.PlayKey) (*models.PlayTotals, error) {
	var totals models.PlayTotals
	for _, row := range r.store.rows {
		if matchesPlay(row, key) {
			totals.TotalBet += row.Bet
			totals.TotalWin += row.Win
			totals.Rows++
		}
	}
	return &totals, nil
}

func (r *memoryWagerRepository) ListByPlay(ctx context.Context, key models.PlayKey) ([]*models.WagerRow, error) {
	var out []*models.WagerRow
	for _, row := range r.store.rows {
		if matchesPlay(row, key) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryWagerRepository) UpdateRow(ctx context.Context, key models.PlayKey, row *models.WagerRow) (bool, error) {
	for _, existing := range r.store.rows {
		if existing.ID == row.ID && matchesPlay(existing, key) {
			existing.Num = row.Num
			existing.Bet = row.Bet
			existing.Opts = row.Opts
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryWagerRepository) DeleteByPlay(ctx context.Context, key models.PlayKey) (int64, error) {
	var kept []*models.WagerRow
	var deleted int64
	for _, row := range r.store.rows {
		if matchesPlay(row, key) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	r.store.rows = kept
	return deleted, nil
}

func (r *memoryWagerRepository) HasRefundFor(ctx context.Context, username string, playTime time.Time) (bool, error) {
	for _, row := range r.store.rows {
		if row.Kind == models.RowKindRefund && row.Username == username &&
			row.RefPlayTime != nil && row.RefPlayTime.Equal(playTime) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryWagerRepository) ListRecent(ctx context.Context, username string, limit int) ([]*models.WagerRow, error) {
	var out []*models.WagerRow
	for i := len(r.store.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.store.rows[i].Username == username {
			copied := *r.store.rows[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memoryBalanceHistoryRepository struct {
	store *memoryStore
}

func (r *memoryBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	r.store.nextID++
	history.ID = r.store.nextID
	r.store.history = append(r.store.history, history)
	return nil
}

func (r *memoryBalanceHistoryRepository) GetByUser(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error) {
	var out []*models.BalanceHistory
	for i := len(r.store.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.store.history[i].Username == username {
			out = append(out, r.store.history[i])
		}
	}
	return out, nil
}

var errStorage = errors.New("storage unavailable")
