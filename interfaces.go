package subscription

import (
	"context"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/common"
)

// TransferCore runs transfer attempts for one sending account.
// All of the functions must support concurrency.
type TransferCore interface {
	// Transfer runs one attempt to its terminal state. An attempt started while
	// another one is running returns a skipped outcome.
	Transfer(ctx context.Context) common.TransferOutcome

	NonceState() common.NonceState
	GetAddress() ethereum.Address

	GetRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error)
	GetPendingActivities() ([]common.ActivityRecord, error)
}
