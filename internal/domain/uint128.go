package domain

import (
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"lukechampine.com/uint128"
)

// Uint128 is the width of identifiers, amounts and balance counters.
type Uint128 = uint128.Uint128

// ParseID decodes a hex encoded identifier. An empty string is zero.
func ParseID(s string) (Uint128, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return uint128.Zero, nil
	}
	if len(s) > 32 {
		return uint128.Zero, fmt.Errorf("%w: %q is wider than 128 bits", ErrInvalidID, s)
	}

	n, ok := new(big.Int).SetString(s, 16)
	if !ok || n.Sign() < 0 {
		return uint128.Zero, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}

	return uint128.FromBig(n), nil
}

// FormatID encodes an identifier as lowercase hex without leading zeros.
func FormatID(id Uint128) string {
	return id.Big().Text(16)
}

// ParseAmount decodes a base-10 amount. An empty string is zero.
func ParseAmount(s string) (Uint128, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint128.Zero, nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return uint128.FromBig(n), nil
}

// FormatAmount encodes an amount in base 10.
func FormatAmount(v Uint128) string {
	return v.String()
}

// CheckedAdd returns a+b and false if the sum overflows 128 bits.
func CheckedAdd(a, b Uint128) (Uint128, bool) {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, carry := bits.Add64(a.Hi, b.Hi, carry)
	return uint128.New(lo, hi), carry == 0
}

// CheckedSub returns a-b and false if b is greater than a.
func CheckedSub(a, b Uint128) (Uint128, bool) {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	hi, borrow := bits.Sub64(a.Hi, b.Hi, borrow)
	return uint128.New(lo, hi), borrow == 0
}

// SaturatingSub returns a-b, or zero when b is greater than a.
func SaturatingSub(a, b Uint128) Uint128 {
	if d, ok := CheckedSub(a, b); ok {
		return d
	}
	return uint128.Zero
}

// Min128 returns the smaller of a and b.
func Min128(a, b Uint128) Uint128 {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
