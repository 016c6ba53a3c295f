package ledger

import (
	"context"
	"errors"
)

// SignedAction is an instruction payload signed by the submitting
// authority, ready for submission to the ledger.
type SignedAction struct {
	Payload   []byte
	Signer    Address
	Signature []byte
}

// Client is the capability surface the reconciliation engine consumes
// from the remote ledger. Reads require no authority; submissions are
// confirmed out of band via AwaitConfirmation.
type Client interface {
	// FetchRaw reads the raw bytes stored at addr. found is false when
	// no record exists at the address; that is not an error.
	FetchRaw(ctx context.Context, addr Address) (data []byte, found bool, err error)

	// Submit sends a signed action to the ledger and returns its
	// transaction ID. A returned transaction ID does not imply the
	// action has been confirmed.
	Submit(ctx context.Context, action SignedAction) (txID string, err error)

	// AwaitConfirmation polls until the transaction is confirmed, the
	// bounded wait expires (ErrConfirmationTimeout), or the ledger
	// reports the transaction failed.
	AwaitConfirmation(ctx context.Context, txID string) error
}

// ErrConfirmationTimeout reports that the bounded confirmation wait
// expired. The mutation may still have landed; callers must re-probe
// to learn the true outcome.
var ErrConfirmationTimeout = errors.New("ledger: confirmation wait timed out")

// ErrAuthorityMismatch reports that the ledger rejected a submission
// because the signer lacks the authority the resource requires.
// Retrying with the same credentials cannot succeed.
var ErrAuthorityMismatch = errors.New("ledger: submission rejected, signer is not the resource authority")

// ErrTransactionFailed reports that the ledger confirmed the
// transaction and it failed.
var ErrTransactionFailed = errors.New("ledger: transaction failed")
