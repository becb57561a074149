package nonce

import (
	"errors"
	"fmt"
	"sync"

	"github.com/karangoraniya/subscription-icp/common"
)

// ErrNonceRegression is returned when a commit does not move the cache forward.
var ErrNonceRegression = errors.New("mined nonce does not advance the cached nonce")

// Cache is the in-memory record of the last nonce confirmed on chain for
// one account. It starts Unknown and only moves to strictly higher values.
// It is never persisted, a restart begins from Unknown again.
type Cache struct {
	mu    sync.RWMutex
	state common.NonceState
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the current state.
func (self *Cache) Get() common.NonceState {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.state
}

// Commit sets the state to Known(nonce).
func (self *Cache) Commit(nonce uint64) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.state.Known && nonce <= self.state.Nonce {
		return fmt.Errorf("%w: cached %d, mined %d", ErrNonceRegression, self.state.Nonce, nonce)
	}
	self.state = common.NonceState{Known: true, Nonce: nonce}
	return nil
}
