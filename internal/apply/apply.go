// Package apply executes reconciliation plans against the ledger,
// one confirmed action at a time.
package apply

import (
	"context"
	"errors"

	"github.com/arkhamnet/arkhamctl/internal/codec"
	"github.com/arkhamnet/arkhamctl/internal/events"
	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/plan"
)

// MintDecimals is the decimal precision of the protocol token mint.
const MintDecimals = 9

// Status represents the outcome of executing a single action.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// CauseKind classifies why an action failed.
type CauseKind string

const (
	// CauseTransient: network or other retriable failure; the caller
	// may retry the whole run.
	CauseTransient CauseKind = "transient"
	// CauseTimeout: the bounded confirmation wait expired. The
	// mutation may still have landed; re-probe to learn the outcome.
	CauseTimeout CauseKind = "timeout"
	// CauseAuthorityMismatch: the signer lacks the required authority.
	// Retrying with the same credentials cannot succeed.
	CauseAuthorityMismatch CauseKind = "authority_mismatch"
	// CauseRejected: the ledger confirmed the transaction failed.
	CauseRejected CauseKind = "rejected"
)

// Result describes the outcome of executing a single action.
type Result struct {
	Action plan.ActionType
	Status Status
	TxID   string
	Cause  CauseKind
	Err    string
}

// Executor runs plans against the ledger. Actions execute strictly
// sequentially: each submission is confirmed (or fails) before the
// next is sent, so a Close is never overtaken by its paired
// Initialize.
type Executor struct {
	Client        ledger.Client
	Keypair       *ledger.Keypair
	ConfigAddress ledger.Address
	Emitter       events.Emitter
	CorrelationID string
}

// Execute runs the plan's actions in order and returns one result per
// attempted action. On the first failure it stops and returns the
// partial sequence; later actions are never attempted in the same run.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) []Result {
	emitter := e.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}

	emitter.Emit(events.New(events.ApplyStarted, e.CorrelationID).
		WithData("address", e.ConfigAddress.String()).
		WithData("action_count", len(p.Actions)))

	var results []Result
	for _, action := range p.Actions {
		res := e.executeOne(ctx, action)
		results = append(results, res)

		emitter.Emit(events.New(events.ApplyAction, e.CorrelationID).
			WithData("address", e.ConfigAddress.String()).
			WithData("action", string(action.Type)).
			WithData("status", string(res.Status)).
			WithData("tx_id", res.TxID))

		if res.Status == StatusFailed {
			break
		}
	}

	emitter.Emit(events.New(events.ApplyCompleted, e.CorrelationID).
		WithData("address", e.ConfigAddress.String()).
		WithData("attempted", len(results)).
		WithData("planned", len(p.Actions)))
	return results
}

func (e *Executor) executeOne(ctx context.Context, action plan.Action) Result {
	payload, err := e.encode(action)
	if err != nil {
		return Result{Action: action.Type, Status: StatusFailed, Cause: CauseTransient, Err: err.Error()}
	}

	signed := e.Keypair.Sign(payload)
	txID, err := e.Client.Submit(ctx, signed)
	if err != nil {
		return Result{
			Action: action.Type,
			Status: StatusFailed,
			Cause:  classifySubmit(err),
			Err:    err.Error(),
		}
	}

	if err := e.Client.AwaitConfirmation(ctx, txID); err != nil {
		return Result{
			Action: action.Type,
			Status: StatusFailed,
			TxID:   txID,
			Cause:  classifyConfirm(err),
			Err:    err.Error(),
		}
	}

	return Result{Action: action.Type, Status: StatusConfirmed, TxID: txID}
}

func (e *Executor) encode(action plan.Action) ([]byte, error) {
	switch action.Type {
	case plan.ActionInitialize:
		return codec.EncodeInitialize(*action.Init), nil
	case plan.ActionUpdate:
		return codec.EncodeUpdate(*action.Delta), nil
	case plan.ActionClose:
		return codec.EncodeClose(), nil
	case plan.ActionInitializeMint:
		mint := ledger.DeriveMintAddress(e.ConfigAddress)
		return codec.EncodeInitializeMint(mint, MintDecimals), nil
	}
	return nil, errors.New("unknown action type " + string(action.Type))
}

func classifySubmit(err error) CauseKind {
	if errors.Is(err, ledger.ErrAuthorityMismatch) {
		return CauseAuthorityMismatch
	}
	return CauseTransient
}

func classifyConfirm(err error) CauseKind {
	switch {
	case errors.Is(err, ledger.ErrConfirmationTimeout):
		return CauseTimeout
	case errors.Is(err, ledger.ErrTransactionFailed):
		return CauseRejected
	default:
		return CauseTransient
	}
}
