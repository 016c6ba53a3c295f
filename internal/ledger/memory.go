package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-memory Client used by package tests, in the
// same spirit as the event collector fakes. Behavior hooks allow
// failure injection; the Interpreter hook lets tests apply submitted
// actions to the stored accounts.
type MemoryClient struct {
	mu       sync.Mutex
	accounts map[Address][]byte
	seq      int
	pending  map[string]error

	// Interpreter, when set, is invoked on Submit to apply the action
	// to the account map. A returned error is surfaced from Submit.
	Interpreter func(action SignedAction) error

	// SubmitErr, when set, is consulted before the Interpreter and can
	// reject a submission outright.
	SubmitErr func(action SignedAction) error

	// ConfirmErr, when set, is returned from AwaitConfirmation for
	// every transaction.
	ConfirmErr error

	// FetchErr, when set, is returned from every FetchRaw call.
	FetchErr error
}

// NewMemoryClient creates an empty in-memory ledger.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		accounts: make(map[Address][]byte),
		pending:  make(map[string]error),
	}
}

// SetAccount stores raw bytes at an address.
func (c *MemoryClient) SetAccount(addr Address, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[addr] = append([]byte(nil), data...)
}

// DeleteAccount removes the record at an address.
func (c *MemoryClient) DeleteAccount(addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.accounts, addr)
}

// Account returns the stored bytes at an address.
func (c *MemoryClient) Account(addr Address) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.accounts[addr]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// FetchRaw implements Client.
func (c *MemoryClient) FetchRaw(_ context.Context, addr Address) ([]byte, bool, error) {
	if c.FetchErr != nil {
		return nil, false, c.FetchErr
	}
	data, ok := c.Account(addr)
	return data, ok, nil
}

// Submit implements Client.
func (c *MemoryClient) Submit(_ context.Context, action SignedAction) (string, error) {
	if c.SubmitErr != nil {
		if err := c.SubmitErr(action); err != nil {
			return "", err
		}
	}
	if c.Interpreter != nil {
		if err := c.Interpreter(action); err != nil {
			return "", err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	txID := fmt.Sprintf("tx-%04d", c.seq)
	c.pending[txID] = c.ConfirmErr
	return txID, nil
}

// AwaitConfirmation implements Client.
func (c *MemoryClient) AwaitConfirmation(_ context.Context, txID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err, ok := c.pending[txID]
	if !ok {
		return fmt.Errorf("unknown transaction %s", txID)
	}
	return err
}
