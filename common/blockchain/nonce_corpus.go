package blockchain

import (
	"context"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/common"
)

// NonceCorpus is the interface to keep track of transaction count of an ethereum account.
type NonceCorpus interface {
	GetAddress() ethereum.Address
	// GetNextNonce picks the nonce for the next transaction. It never fails,
	// a failed network query is reported through NonceResolution.QueryErr.
	GetNextNonce(ctx context.Context) common.NonceResolution
	// MinedNonce records the nonce of a transaction confirmed on chain.
	MinedNonce(nonce uint64) error
	// State returns the last confirmed nonce, if any.
	State() common.NonceState
}
