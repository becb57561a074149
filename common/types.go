package common

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Timestamp string

func GetTimestamp() Timestamp {
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	return Timestamp(strconv.Itoa(int(timestamp)))
}

func GetTimepoint() uint64 {
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	return uint64(timestamp)
}

func TimeToTimepoint(t time.Time) uint64 {
	timestamp := t.UnixNano() / int64(time.Millisecond)
	return uint64(timestamp)
}

func TimepointToTime(t uint64) time.Time {
	return time.Unix(0, int64(t)*int64(time.Millisecond))
}

// ActivityID identifies an activity record. Timepoint is in nanoseconds so
// records sort by creation time in the bolt bucket.
type ActivityID struct {
	Timepoint uint64
	EID       string
}

func (self ActivityID) ToBytes() [64]byte {
	var b [64]byte
	temp := make([]byte, 8)
	binary.BigEndian.PutUint64(temp, self.Timepoint)
	temp = append(temp, []byte(self.EID)...)
	copy(b[0:], temp)
	return b
}

func (self ActivityID) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%s|%s", strconv.FormatUint(self.Timepoint, 10), self.EID)), nil
}

func (self *ActivityID) UnmarshalText(b []byte) error {
	id, err := StringToActivityID(string(b))
	if err != nil {
		return err
	}
	self.Timepoint = id.Timepoint
	self.EID = id.EID
	return nil
}

func (self ActivityID) String() string {
	res, _ := self.MarshalText()
	return string(res)
}

func StringToActivityID(id string) (ActivityID, error) {
	result := ActivityID{}
	parts := strings.Split(id, "|")
	if len(parts) < 2 {
		return result, fmt.Errorf("Invalid activity id")
	}
	timepoint, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return result, err
	}
	result.Timepoint = timepoint
	result.EID = strings.Join(parts[1:], "|")
	return result, nil
}

// NewActivityID creates new Activity ID.
func NewActivityID(timepoint uint64, eid string) ActivityID {
	return ActivityID{
		Timepoint: timepoint,
		EID:       eid,
	}
}

type ActivityRecord struct {
	Action       string
	ID           ActivityID
	Destination  string
	Params       map[string]interface{}
	Result       map[string]interface{}
	MiningStatus string
	Timestamp    Timestamp
}

// IsPending returns true if the transaction of the activity was broadcasted
// but its mining status is still unknown.
func (self ActivityRecord) IsPending() bool {
	return self.MiningStatus == MiningStatusSubmitted
}

const (
	MiningStatusFailed     = "failed"
	MiningStatusSubmitted  = "submitted"
	MiningStatusMined      = "mined"
	// MiningStatusSuperseded marks a submitted activity whose nonce was
	// later confirmed on chain. Its own transaction may have been mined or
	// replaced, the node does not say which.
	MiningStatusSuperseded = "superseded"
)
