package engine

import (
	"sync"

	"github.com/iho/ledgerd/internal/domain"
)

// view is the read side shared by the store and staged overlays.
type view interface {
	account(id domain.Uint128) *domain.Account
	transfer(id domain.Uint128) *domain.Transfer
	pendingStatus(id domain.Uint128) domain.PendingStatus
	lastTimestamp() uint64
}

type transferRef struct {
	timestamp uint64
	id        domain.Uint128
	debit     bool
}

// Store holds committed ledger state. Readers take mu for reading; the
// single writer reads without locking and takes mu only to merge a stage.
type Store struct {
	mu sync.RWMutex

	accounts  map[domain.Uint128]*domain.Account
	transfers map[domain.Uint128]*domain.Transfer
	pending   map[domain.Uint128]domain.PendingStatus

	// Creation order, which is also timestamp order.
	accountOrder  []domain.Uint128
	transferOrder []domain.Uint128

	accountTransfers map[domain.Uint128][]transferRef
	history          map[domain.Uint128][]domain.AccountBalance

	timestamp uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:         make(map[domain.Uint128]*domain.Account),
		transfers:        make(map[domain.Uint128]*domain.Transfer),
		pending:          make(map[domain.Uint128]domain.PendingStatus),
		accountTransfers: make(map[domain.Uint128][]transferRef),
		history:          make(map[domain.Uint128][]domain.AccountBalance),
	}
}

func (s *Store) account(id domain.Uint128) *domain.Account {
	return s.accounts[id]
}

func (s *Store) transfer(id domain.Uint128) *domain.Transfer {
	return s.transfers[id]
}

func (s *Store) pendingStatus(id domain.Uint128) domain.PendingStatus {
	return s.pending[id]
}

func (s *Store) lastTimestamp() uint64 {
	return s.timestamp
}

// GetAccount returns a copy of the account.
func (s *Store) GetAccount(id domain.Uint128) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, false
	}
	return *a, true
}

// GetTransfer returns a copy of the transfer.
func (s *Store) GetTransfer(id domain.Uint128) (domain.Transfer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return domain.Transfer{}, false
	}
	return *t, true
}

// PendingStatus returns the state of a pending transfer.
func (s *Store) PendingStatus(id domain.Uint128) domain.PendingStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[id]
}

// apply merges a fully staged batch. The stage must have been built on
// top of this store and must not be used afterwards.
func (s *Store) apply(st *stage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range st.accounts {
		s.accounts[id] = a
	}
	s.accountOrder = append(s.accountOrder, st.newAccounts...)

	for _, id := range st.newTransfers {
		t := st.transfers[id]
		s.transfers[id] = t
		s.transferOrder = append(s.transferOrder, id)
		s.accountTransfers[t.DebitAccountID] = append(s.accountTransfers[t.DebitAccountID],
			transferRef{timestamp: t.Timestamp, id: id, debit: true})
		s.accountTransfers[t.CreditAccountID] = append(s.accountTransfers[t.CreditAccountID],
			transferRef{timestamp: t.Timestamp, id: id})
	}

	for id, status := range st.pending {
		s.pending[id] = status
	}
	for _, snap := range st.snapshots {
		s.history[snap.accountID] = append(s.history[snap.accountID], snap.balance)
	}

	s.timestamp = st.timestamp
}

func (s *Store) empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts) == 0 && len(s.transfers) == 0
}
