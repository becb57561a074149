package common

import (
	"errors"
	"fmt"

	ethereum "github.com/ethereum/go-ethereum/common"
)

// NonceState is the in-memory view of the last nonce this process saw
// confirmed on chain. The zero value is Unknown.
type NonceState struct {
	Known bool   `json:"known"`
	Nonce uint64 `json:"nonce"`
}

func (self NonceState) String() string {
	if !self.Known {
		return "unknown"
	}
	return fmt.Sprintf("known(%d)", self.Nonce)
}

type NonceSource string

const (
	// NonceFromCache means the nonce is the cached mined nonce + 1.
	NonceFromCache NonceSource = "cache"
	// NonceFromNetwork means the nonce is the account's pending transaction count.
	NonceFromNetwork NonceSource = "network"
	// NonceFallback means the count query failed and 0 is used instead.
	NonceFallback NonceSource = "fallback"
)

// NonceResolution is the nonce chosen for one transfer attempt.
type NonceResolution struct {
	Nonce  uint64
	Source NonceSource
	// QueryErr is the failed count query when Source is NonceFallback.
	QueryErr error
}

type OutcomeKind string

const (
	OutcomeConfirmed      OutcomeKind = "confirmed"
	OutcomeRPCFailure     OutcomeKind = "rpc_failure"
	OutcomeNotFound       OutcomeKind = "not_found"
	OutcomeIntegrityFault OutcomeKind = "integrity_fault"
	OutcomeSkipped        OutcomeKind = "skipped"
)

// Stage is the pipeline step an rpc_failure happened at.
type Stage string

const (
	StageBuild     Stage = "build"
	StageSign      Stage = "sign"
	StageBroadcast Stage = "broadcast"
	StageLookup    Stage = "lookup"
)

// TransferOutcome is the terminal state of one transfer attempt.
type TransferOutcome struct {
	Kind   OutcomeKind
	Stage  Stage
	Nonce  NonceResolution
	TxHash ethereum.Hash
	// MinedNonce is the nonce reported by the node for TxHash.
	MinedNonce uint64
	// Pending is true when the node returned the transaction from its pool
	// rather than from a block.
	Pending bool
	Err     error
}

// Succeeded returns true only when the transaction was found on chain and
// its nonce was committed.
func (self TransferOutcome) Succeeded() bool {
	return self.Kind == OutcomeConfirmed
}

// Result renders the outcome as a descriptive success string or error.
func (self TransferOutcome) Result() (string, error) {
	if self.Succeeded() {
		return fmt.Sprintf(
			"transfer confirmed: tx %s, nonce %d (pending: %t)",
			self.TxHash.Hex(), self.MinedNonce, self.Pending,
		), nil
	}
	if self.Err == nil {
		return "", errors.New(string(self.Kind))
	}
	return "", self.Err
}
