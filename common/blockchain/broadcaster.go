package blockchain

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

// TxSender is the part of an ethereum client that submits transactions.
type TxSender interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. It returns a map of
// failures and a bool indicating that the tx is broadcasted to
// at least 1 node
type Broadcaster struct {
	clients map[string]TxSender
	timeout time.Duration
}

func (self Broadcaster) broadcast(
	ctx context.Context,
	id string, client TxSender, tx *types.Transaction,
	wg *sync.WaitGroup, failures *sync.Map) {
	defer wg.Done()
	if self.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, self.timeout)
		defer cancel()
	}
	if err := client.SendTransaction(ctx, tx); err != nil {
		failures.Store(id, err)
	}
}

func (self Broadcaster) Broadcast(ctx context.Context, tx *types.Transaction) (map[string]error, bool) {
	ctx = ensureContext(ctx)
	failures := sync.Map{}
	wg := sync.WaitGroup{}
	for id, client := range self.clients {
		wg.Add(1)
		go self.broadcast(ctx, id, client, tx, &wg, &failures)
	}
	wg.Wait()
	result := map[string]error{}
	failures.Range(func(key, value interface{}) bool {
		result[key.(string)] = value.(error)
		return true
	})
	return result, len(result) != len(self.clients) && len(self.clients) > 0
}

// NewBroadcasterWithSenders creates a broadcaster over the given senders, keyed by URL.
func NewBroadcasterWithSenders(senders map[string]TxSender, timeout time.Duration) *Broadcaster {
	return &Broadcaster{
		clients: senders,
		timeout: timeout,
	}
}
