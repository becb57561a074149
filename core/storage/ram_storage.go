package storage

import (
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/karangoraniya/subscription-icp/common"
)

const MAX_RAM_RECORDS int = 1000

// RamStorage is a simple and fast storage that keeps only the newest
// activities in memory. Records are lost on restart, use bolt when the
// audit trail must survive.
type RamStorage struct {
	mu      sync.RWMutex
	records []common.ActivityRecord
	limit   int
}

func NewRamStorage() *RamStorage {
	return &RamStorage{limit: MAX_RAM_RECORDS}
}

func (self *RamStorage) Record(
	action string,
	id common.ActivityID,
	destination string,
	params map[string]interface{}, result map[string]interface{},
	mstatus string,
	timepoint uint64) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.records = append(self.records, common.ActivityRecord{
		Action:       action,
		ID:           id,
		Destination:  destination,
		Params:       params,
		Result:       result,
		MiningStatus: mstatus,
		Timestamp:    common.Timestamp(strconv.FormatUint(timepoint, 10)),
	})
	sort.SliceStable(self.records, func(i, j int) bool {
		return self.records[i].ID.Timepoint < self.records[j].ID.Timepoint
	})
	if len(self.records) > self.limit {
		self.records = self.records[len(self.records)-self.limit:]
	}
	return nil
}

func (self *RamStorage) GetActivity(id common.ActivityID) (common.ActivityRecord, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	for _, record := range self.records {
		if record.ID == id {
			return record, nil
		}
	}
	return common.ActivityRecord{}, errors.New("Cannot find that activity")
}

func (self *RamStorage) GetAllRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	result := []common.ActivityRecord{}
	for i := len(self.records) - 1; i >= 0; i-- {
		tp := self.records[i].ID.Timepoint
		if tp >= fromTime && tp <= toTime {
			result = append(result, self.records[i])
		}
	}
	return result, nil
}

func (self *RamStorage) GetPendingActivities() ([]common.ActivityRecord, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	result := []common.ActivityRecord{}
	for _, record := range self.records {
		if record.IsPending() {
			result = append(result, record)
		}
	}
	return result, nil
}

// ResolvePending marks pending activities whose nonce is at most minedNonce
// as superseded.
func (self *RamStorage) ResolvePending(minedNonce uint64) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	for i, record := range self.records {
		if !record.IsPending() {
			continue
		}
		if nonce, ok := recordNonce(record); ok && nonce <= minedNonce {
			self.records[i].MiningStatus = common.MiningStatusSuperseded
		}
	}
	return nil
}
