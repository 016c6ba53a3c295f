// Package ledger provides read/write access to the remote
// account-oriented ledger that stores protocol resources.
package ledger

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Address identifies a remotely persisted account record.
type Address [32]byte

// ZeroAddress is the null-identity sentinel. The protocol config's
// token-mint link holds ZeroAddress until the mint is initialized.
var ZeroAddress Address

// ParseAddress decodes the base58 text form of an address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("parsing address %q: %w", s, err)
	}
	if len(raw) != len(a) {
		return a, fmt.Errorf("parsing address %q: got %d bytes, want %d", s, len(raw), len(a))
	}
	copy(a[:], raw)
	return a, nil
}

// String returns the base58 text form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is the null-identity sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}
