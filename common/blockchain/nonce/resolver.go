package nonce

import (
	"context"
	"log"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/common"
)

// CountReader reports the number of transactions sent from an account.
type CountReader interface {
	PendingNonceAt(ctx context.Context, account ethereum.Address) (uint64, error)
}

// Resolver picks the nonce of the next transaction. While the cache is
// Known(n) it answers n+1 without touching the network. Before the first
// confirmation it asks the node for the pending transaction count, and uses 0
// if that query fails.
type Resolver struct {
	address ethereum.Address
	reader  CountReader
	cache   *Cache
}

func NewResolver(address ethereum.Address, reader CountReader, cache *Cache) *Resolver {
	return &Resolver{
		address: address,
		reader:  reader,
		cache:   cache,
	}
}

func (self *Resolver) GetAddress() ethereum.Address {
	return self.address
}

func (self *Resolver) GetNextNonce(ctx context.Context) common.NonceResolution {
	if state := self.cache.Get(); state.Known {
		return common.NonceResolution{Nonce: state.Nonce + 1, Source: common.NonceFromCache}
	}
	nonce, err := self.reader.PendingNonceAt(ctx, self.address)
	if err != nil {
		log.Printf("WARNING: cannot get transaction count of %s, falling back to nonce 0: %s", self.address.Hex(), err)
		return common.NonceResolution{Nonce: 0, Source: common.NonceFallback, QueryErr: err}
	}
	return common.NonceResolution{Nonce: nonce, Source: common.NonceFromNetwork}
}

func (self *Resolver) MinedNonce(nonce uint64) error {
	return self.cache.Commit(nonce)
}

func (self *Resolver) State() common.NonceState {
	return self.cache.Get()
}
