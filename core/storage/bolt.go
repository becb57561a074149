package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/boltdb/bolt"
	"github.com/karangoraniya/subscription-icp/common"
)

const (
	ACTIVITY_BUCKET         string = "activities"
	PENDING_ACTIVITY_BUCKET string = "pending_activities"
	MAX_GET_RECORDS_PERIOD  uint64 = 86400000 //1 days in milisec
)

// BoltStorage keeps the audit log of transfer attempts in a bolt file.
type BoltStorage struct {
	mu sync.RWMutex
	db *bolt.DB
}

func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ACTIVITY_BUCKET)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(PENDING_ACTIVITY_BUCKET))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}

func (self *BoltStorage) Close() error {
	return self.db.Close()
}

func uint64ToBytes(u uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, u)
	return b
}

func (self *BoltStorage) Record(
	action string,
	id common.ActivityID,
	destination string,
	params map[string]interface{}, result map[string]interface{},
	mstatus string,
	timepoint uint64) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.db.Update(func(tx *bolt.Tx) error {
		record := common.ActivityRecord{
			Action:       action,
			ID:           id,
			Destination:  destination,
			Params:       params,
			Result:       result,
			MiningStatus: mstatus,
			Timestamp:    common.Timestamp(strconv.FormatUint(timepoint, 10)),
		}
		dataJson, err := json.Marshal(record)
		if err != nil {
			return err
		}
		idByte := id.ToBytes()
		if err = tx.Bucket([]byte(ACTIVITY_BUCKET)).Put(idByte[:], dataJson); err != nil {
			return err
		}
		if record.IsPending() {
			return tx.Bucket([]byte(PENDING_ACTIVITY_BUCKET)).Put(idByte[:], dataJson)
		}
		return nil
	})
}

func (self *BoltStorage) GetActivity(id common.ActivityID) (common.ActivityRecord, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	result := common.ActivityRecord{}
	err := self.db.View(func(tx *bolt.Tx) error {
		idBytes := id.ToBytes()
		v := tx.Bucket([]byte(ACTIVITY_BUCKET)).Get(idBytes[:])
		if v == nil {
			return errors.New("Cannot find that activity")
		}
		return json.Unmarshal(v, &result)
	})
	return result, err
}

// GetAllRecords returns activities between fromTime and toTime (nanoseconds),
// newest first.
func (self *BoltStorage) GetAllRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error) {
	result := []common.ActivityRecord{}
	if toTime < fromTime {
		return result, fmt.Errorf("toTime %d is before fromTime %d", toTime, fromTime)
	}
	if (toTime-fromTime)/1000000 > MAX_GET_RECORDS_PERIOD {
		return result, fmt.Errorf("Time range is too broad, it must be smaller or equal to %d miliseconds", MAX_GET_RECORDS_PERIOD)
	}
	self.mu.RLock()
	defer self.mu.RUnlock()
	err := self.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(ACTIVITY_BUCKET)).Cursor()
		min := uint64ToBytes(fromTime)
		max := uint64ToBytes(toTime)
		for k, v := c.Seek(min); k != nil && bytes.Compare(k[:8], max) <= 0; k, v = c.Next() {
			record := common.ActivityRecord{}
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			result = append([]common.ActivityRecord{record}, result...)
		}
		return nil
	})
	return result, err
}

func (self *BoltStorage) GetPendingActivities() ([]common.ActivityRecord, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	result := []common.ActivityRecord{}
	err := self.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(PENDING_ACTIVITY_BUCKET)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			record := common.ActivityRecord{}
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			result = append(result, record)
		}
		return nil
	})
	return result, err
}

// ResolvePending marks pending activities whose nonce is at most minedNonce
// as superseded and drops them from the pending bucket.
func (self *BoltStorage) ResolvePending(minedNonce uint64) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.db.Update(func(tx *bolt.Tx) error {
		pb := tx.Bucket([]byte(PENDING_ACTIVITY_BUCKET))
		ab := tx.Bucket([]byte(ACTIVITY_BUCKET))
		stales := map[string]common.ActivityRecord{}
		c := pb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			record := common.ActivityRecord{}
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			if nonce, ok := recordNonce(record); ok && nonce <= minedNonce {
				stales[string(k)] = record
			}
		}
		for k, record := range stales {
			record.MiningStatus = common.MiningStatusSuperseded
			dataJson, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if err = ab.Put([]byte(k), dataJson); err != nil {
				return err
			}
			if err = pb.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// recordNonce reads the "nonce" param of a record, which is a float64 once it
// went through json.
func recordNonce(record common.ActivityRecord) (uint64, bool) {
	switch nonce := record.Params["nonce"].(type) {
	case uint64:
		return nonce, true
	case float64:
		return uint64(nonce), true
	case json.Number:
		n, err := strconv.ParseUint(string(nonce), 10, 64)
		return n, err == nil
	}
	return 0, false
}
