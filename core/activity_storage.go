package core

import (
	"github.com/karangoraniya/subscription-icp/common"
)

// ActivityStorage is the interface contains all database operations of core.
// It keeps an audit trail of transfer attempts only, nonce state is never
// read back from it.
type ActivityStorage interface {
	Record(
		action string,
		id common.ActivityID,
		destination string,
		params map[string]interface{},
		result map[string]interface{},
		mstatus string,
		timepoint uint64) error

	GetActivity(id common.ActivityID) (common.ActivityRecord, error)

	// GetAllRecords returns records created between fromTime and toTime,
	// both in nanoseconds, newest first.
	GetAllRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error)

	// GetPendingActivities returns broadcast transfers whose fate is unknown.
	GetPendingActivities() ([]common.ActivityRecord, error)
	// ResolvePending clears pending activities with a nonce up to minedNonce.
	ResolvePending(minedNonce uint64) error
}
