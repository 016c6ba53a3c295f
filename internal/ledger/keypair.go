package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
)

// Keypair holds the ed25519 identity used to sign ledger actions.
type Keypair struct {
	priv ed25519.PrivateKey
}

// GenerateKeypair creates a fresh random keypair.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{priv: priv}, nil
}

// LoadKeypair reads a key file: a JSON array of 64 bytes, the private
// key seed followed by the public key.
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading keypair: %w", err)
	}
	var nums []uint16
	if err := json.Unmarshal(data, &nums); err != nil {
		return nil, fmt.Errorf("loading keypair %s: %w", path, err)
	}
	if len(nums) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("loading keypair %s: got %d bytes, want %d", path, len(nums), ed25519.PrivateKeySize)
	}
	raw := make([]byte, ed25519.PrivateKeySize)
	for i, n := range nums {
		if n > 0xff {
			return nil, fmt.Errorf("loading keypair %s: byte %d out of range", path, i)
		}
		raw[i] = byte(n)
	}
	return &Keypair{priv: ed25519.PrivateKey(raw)}, nil
}

// Save writes the key file with owner-only permissions.
func (k *Keypair) Save(path string) error {
	nums := make([]uint16, len(k.priv))
	for i, b := range k.priv {
		nums[i] = uint16(b)
	}
	data, err := json.Marshal(nums)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Address returns the public address of the keypair.
func (k *Keypair) Address() Address {
	var a Address
	copy(a[:], k.priv.Public().(ed25519.PublicKey))
	return a
}

// Sign produces a SignedAction over the given instruction payload.
func (k *Keypair) Sign(payload []byte) SignedAction {
	return SignedAction{
		Payload:   payload,
		Signer:    k.Address(),
		Signature: ed25519.Sign(k.priv, payload),
	}
}
