package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iho/ledgerd/internal/domain"
)

// ErrNotEmpty is returned when restoring into an engine that already holds state.
var ErrNotEmpty = errors.New("engine already holds state")

// Restore rebuilds state from journaled accounts and transfers. Records are
// replayed in timestamp order with their original timestamps; balances and
// history are recomputed. Nothing is journaled.
func (e *Engine) Restore(accounts []domain.Account, transfers []domain.Transfer) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if !e.store.empty() {
		return ErrNotEmpty
	}

	sort.Slice(accounts, func(i, j int) bool { return before(accounts[i].Timestamp, accounts[i].ID, accounts[j].Timestamp, accounts[j].ID) })
	sort.Slice(transfers, func(i, j int) bool {
		return before(transfers[i].Timestamp, transfers[i].ID, transfers[j].Timestamp, transfers[j].ID)
	})

	s := newStage(e.store)
	i, j := 0, 0
	for i < len(accounts) || j < len(transfers) {
		if j == len(transfers) || (i < len(accounts) && accounts[i].Timestamp < transfers[j].Timestamp) {
			a := accounts[i]
			i++
			if a.Timestamp <= s.lastTimestamp() {
				return fmt.Errorf("account %s: timestamp %d not after %d", domain.FormatID(a.ID), a.Timestamp, s.lastTimestamp())
			}
			if s.account(a.ID) != nil {
				return fmt.Errorf("account %s: duplicate id", domain.FormatID(a.ID))
			}
			s.insertAccount(a)
			continue
		}

		t := transfers[j]
		j++
		if s.transfer(t.ID) != nil {
			return fmt.Errorf("transfer %s: duplicate id", domain.FormatID(t.ID))
		}
		if err := e.exec.replayTransfer(s, t); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}

	e.store.apply(s)
	return nil
}

func before(tsA uint64, idA domain.Uint128, tsB uint64, idB domain.Uint128) bool {
	if tsA != tsB {
		return tsA < tsB
	}
	return idA.Cmp(idB) < 0
}
