package postgres

import (
	"encoding/binary"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/iho/ledgerd/internal/domain"
	"github.com/iho/ledgerd/internal/infrastructure/postgres/generated"
)

// Flag bits as stored in the flags columns.
const (
	accountFlagLinked int32 = 1 << iota
	accountFlagDebitsMustNotExceedCredits
	accountFlagCreditsMustNotExceedDebits
	accountFlagHistory
)

const (
	transferFlagLinked int32 = 1 << iota
	transferFlagPending
	transferFlagPostPending
	transferFlagVoidPending
	transferFlagBalancingDebit
	transferFlagBalancingCredit
)

func accountToParams(a *domain.Account) generated.InsertAccountsParams {
	return generated.InsertAccountsParams{
		ID:          idToBytes(a.ID),
		UserData128: idToBytes(a.UserData128),
		UserData64:  int64(a.UserData64),
		UserData32:  int64(a.UserData32),
		Ledger:      int64(a.Ledger),
		Code:        int32(a.Code),
		Flags:       accountFlagsToBits(a.Flags),
		Timestamp:   int64(a.Timestamp),
	}
}

func rowToAccount(row generated.LedgerAccount) (domain.Account, error) {
	id, err := bytesToID(row.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account id: %w", err)
	}
	ud, err := bytesToID(row.UserData128)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s user_data_128: %w", domain.FormatID(id), err)
	}

	return domain.Account{
		ID:          id,
		UserData128: ud,
		UserData64:  uint64(row.UserData64),
		UserData32:  uint32(row.UserData32),
		Ledger:      uint32(row.Ledger),
		Code:        uint16(row.Code),
		Flags:       bitsToAccountFlags(row.Flags),
		Timestamp:   uint64(row.Timestamp),
	}, nil
}

func transferToParams(t *domain.Transfer) generated.InsertTransfersParams {
	return generated.InsertTransfersParams{
		ID:              idToBytes(t.ID),
		DebitAccountID:  idToBytes(t.DebitAccountID),
		CreditAccountID: idToBytes(t.CreditAccountID),
		Amount:          amountToNumeric(t.Amount),
		PendingID:       idToBytes(t.PendingID),
		UserData128:     idToBytes(t.UserData128),
		UserData64:      int64(t.UserData64),
		UserData32:      int64(t.UserData32),
		Ledger:          int64(t.Ledger),
		Code:            int32(t.Code),
		Flags:           transferFlagsToBits(t.Flags),
		Timestamp:       int64(t.Timestamp),
	}
}

func rowToTransfer(row generated.LedgerTransfer) (domain.Transfer, error) {
	var (
		t   domain.Transfer
		err error
	)
	ids := []struct {
		name string
		raw  []byte
		dst  *domain.Uint128
	}{
		{"id", row.ID, &t.ID},
		{"debit_account_id", row.DebitAccountID, &t.DebitAccountID},
		{"credit_account_id", row.CreditAccountID, &t.CreditAccountID},
		{"pending_id", row.PendingID, &t.PendingID},
		{"user_data_128", row.UserData128, &t.UserData128},
	}
	for _, id := range ids {
		if *id.dst, err = bytesToID(id.raw); err != nil {
			return t, fmt.Errorf("transfer %s: %w", id.name, err)
		}
	}
	if t.Amount, err = numericToAmount(row.Amount); err != nil {
		return t, fmt.Errorf("transfer %s amount: %w", domain.FormatID(t.ID), err)
	}

	t.UserData64 = uint64(row.UserData64)
	t.UserData32 = uint32(row.UserData32)
	t.Ledger = uint32(row.Ledger)
	t.Code = uint16(row.Code)
	t.Flags = bitsToTransferFlags(row.Flags)
	t.Timestamp = uint64(row.Timestamp)
	return t, nil
}

// idToBytes encodes a 128-bit value as 16 big-endian bytes so that bytea
// ordering matches numeric ordering.
func idToBytes(v domain.Uint128) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], v.Hi)
	binary.BigEndian.PutUint64(b[8:], v.Lo)
	return b
}

func bytesToID(b []byte) (domain.Uint128, error) {
	if len(b) != 16 {
		return uint128.Zero, fmt.Errorf("%w: expected 16 bytes, got %d", domain.ErrInvalidID, len(b))
	}
	return uint128.New(binary.BigEndian.Uint64(b[8:]), binary.BigEndian.Uint64(b[:8])), nil
}

func amountToNumeric(v domain.Uint128) pgtype.Numeric {
	return decimalToNumeric(decimal.NewFromBigInt(v.Big(), 0))
}

func numericToAmount(n pgtype.Numeric) (domain.Uint128, error) {
	if !n.Valid {
		return uint128.Zero, fmt.Errorf("%w: null", domain.ErrInvalidAmount)
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return uint128.Zero, fmt.Errorf("%w: not a finite number", domain.ErrInvalidAmount)
	}
	d := numericToDecimal(n)
	if !d.IsInteger() {
		return uint128.Zero, fmt.Errorf("%w: %s is not an integer", domain.ErrInvalidAmount, d)
	}
	b := d.BigInt()
	if b.Sign() < 0 || b.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: %s out of range", domain.ErrInvalidAmount, d)
	}
	return uint128.FromBig(b), nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func accountFlagsToBits(f domain.AccountFlags) int32 {
	var bits int32
	if f.Linked {
		bits |= accountFlagLinked
	}
	if f.DebitsMustNotExceedCredits {
		bits |= accountFlagDebitsMustNotExceedCredits
	}
	if f.CreditsMustNotExceedDebits {
		bits |= accountFlagCreditsMustNotExceedDebits
	}
	if f.History {
		bits |= accountFlagHistory
	}
	return bits
}

func bitsToAccountFlags(bits int32) domain.AccountFlags {
	return domain.AccountFlags{
		Linked:                     bits&accountFlagLinked != 0,
		DebitsMustNotExceedCredits: bits&accountFlagDebitsMustNotExceedCredits != 0,
		CreditsMustNotExceedDebits: bits&accountFlagCreditsMustNotExceedDebits != 0,
		History:                    bits&accountFlagHistory != 0,
	}
}

func transferFlagsToBits(f domain.TransferFlags) int32 {
	var bits int32
	if f.Linked {
		bits |= transferFlagLinked
	}
	if f.Pending {
		bits |= transferFlagPending
	}
	if f.PostPendingTransfer {
		bits |= transferFlagPostPending
	}
	if f.VoidPendingTransfer {
		bits |= transferFlagVoidPending
	}
	if f.BalancingDebit {
		bits |= transferFlagBalancingDebit
	}
	if f.BalancingCredit {
		bits |= transferFlagBalancingCredit
	}
	return bits
}

func bitsToTransferFlags(bits int32) domain.TransferFlags {
	return domain.TransferFlags{
		Linked:              bits&transferFlagLinked != 0,
		Pending:             bits&transferFlagPending != 0,
		PostPendingTransfer: bits&transferFlagPostPending != 0,
		VoidPendingTransfer: bits&transferFlagVoidPending != 0,
		BalancingDebit:      bits&transferFlagBalancingDebit != 0,
		BalancingCredit:     bits&transferFlagBalancingCredit != 0,
	}
}
