package apply

import (
	"fmt"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
	"github.com/arkhamnet/arkhamctl/internal/probe"
)

// SequencingError reports an attempt to provision the mint before the
// primary config is compatible. It is raised before any remote call:
// the mint's identity lives inside the config record, so provisioning
// it first is structurally impossible.
type SequencingError struct {
	Address  ledger.Address
	Observed probe.Kind
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf(
		"mint provisioning requires a compatible config at %s, observed %s; initialize_mint withheld",
		e.Address, e.Observed)
}

// StaleLinkError reports that the config record links a mint address
// at which no account exists. This is never auto-corrected: the link
// may reflect a partially confirmed transaction still landing, and
// overwriting it could mask that race.
type StaleLinkError struct {
	Config ledger.Address
	Mint   ledger.Address
}

func (e *StaleLinkError) Error() string {
	return fmt.Sprintf(
		"config %s links mint %s but no account exists at that address; manual intervention required",
		e.Config, e.Mint)
}
