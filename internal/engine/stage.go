package engine

import "github.com/iho/ledgerd/internal/domain"

type snapshot struct {
	accountID domain.Uint128
	balance   domain.AccountBalance
}

// stage is a scratch overlay over a parent view. Writes land here and are
// either absorbed by the parent or dropped with the stage.
type stage struct {
	parent view

	accounts  map[domain.Uint128]*domain.Account
	transfers map[domain.Uint128]*domain.Transfer
	pending   map[domain.Uint128]domain.PendingStatus

	newAccounts  []domain.Uint128
	newTransfers []domain.Uint128
	snapshots    []snapshot

	timestamp uint64
}

func newStage(parent view) *stage {
	return &stage{
		parent:    parent,
		accounts:  make(map[domain.Uint128]*domain.Account),
		transfers: make(map[domain.Uint128]*domain.Transfer),
		pending:   make(map[domain.Uint128]domain.PendingStatus),
		timestamp: parent.lastTimestamp(),
	}
}

func (s *stage) account(id domain.Uint128) *domain.Account {
	if a, ok := s.accounts[id]; ok {
		return a
	}
	return s.parent.account(id)
}

func (s *stage) transfer(id domain.Uint128) *domain.Transfer {
	if t, ok := s.transfers[id]; ok {
		return t
	}
	return s.parent.transfer(id)
}

func (s *stage) pendingStatus(id domain.Uint128) domain.PendingStatus {
	if status, ok := s.pending[id]; ok {
		return status
	}
	return s.parent.pendingStatus(id)
}

func (s *stage) lastTimestamp() uint64 {
	return s.timestamp
}

func (s *stage) putAccount(a domain.Account) {
	s.accounts[a.ID] = &a
}

func (s *stage) insertAccount(a domain.Account) {
	s.putAccount(a)
	s.newAccounts = append(s.newAccounts, a.ID)
	s.timestamp = a.Timestamp
}

func (s *stage) insertTransfer(t domain.Transfer) {
	s.transfers[t.ID] = &t
	s.newTransfers = append(s.newTransfers, t.ID)
	s.timestamp = t.Timestamp
}

func (s *stage) setPending(id domain.Uint128, status domain.PendingStatus) {
	s.pending[id] = status
}

func (s *stage) recordBalance(a *domain.Account, timestamp uint64) {
	s.snapshots = append(s.snapshots, snapshot{accountID: a.ID, balance: a.Snapshot(timestamp)})
}

// absorb folds a successful child stage into s.
func (s *stage) absorb(child *stage) {
	for id, a := range child.accounts {
		s.accounts[id] = a
	}
	for id, t := range child.transfers {
		s.transfers[id] = t
	}
	for id, status := range child.pending {
		s.pending[id] = status
	}
	s.newAccounts = append(s.newAccounts, child.newAccounts...)
	s.newTransfers = append(s.newTransfers, child.newTransfers...)
	s.snapshots = append(s.snapshots, child.snapshots...)
	s.timestamp = child.timestamp
}

func (s *stage) empty() bool {
	return len(s.newAccounts) == 0 && len(s.newTransfers) == 0
}

// commit lists what the stage created, in timestamp order.
func (s *stage) commit() *domain.Commit {
	c := &domain.Commit{
		Accounts:  make([]domain.Account, 0, len(s.newAccounts)),
		Transfers: make([]domain.Transfer, 0, len(s.newTransfers)),
	}
	for _, id := range s.newAccounts {
		a := *s.accounts[id]
		a.DebitsPending, a.DebitsPosted = domain.Uint128{}, domain.Uint128{}
		a.CreditsPending, a.CreditsPosted = domain.Uint128{}, domain.Uint128{}
		c.Accounts = append(c.Accounts, a)
	}
	for _, id := range s.newTransfers {
		c.Transfers = append(c.Transfers, *s.transfers[id])
	}
	return c
}
