package ledger

import "github.com/zeebo/blake3"

// Seed prefixes for derived addresses. The mint address is a pure
// function of the config address so that independent runs agree on it
// without coordination.
const mintSeed = "arkham:mint:v1"

// DeriveMintAddress returns the address of the token mint that belongs
// to the protocol config stored at config.
func DeriveMintAddress(config Address) Address {
	h := blake3.New()
	h.Write([]byte(mintSeed))
	h.Write(config[:])
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}
