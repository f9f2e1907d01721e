package domain

// Commit is what one batch adds to the ledger: new accounts or new
// transfers, already stamped and with balancing amounts resolved.
// Balances are not carried; replaying the transfers recomputes them.
type Commit struct {
	Accounts  []Account
	Transfers []Transfer
}

// Empty reports whether the batch committed nothing.
func (c *Commit) Empty() bool {
	return len(c.Accounts) == 0 && len(c.Transfers) == 0
}
