package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sort"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	ether "github.com/ethereum/go-ethereum"
	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthereumClient is the subset of *ethclient.Client used to submit and track
// transfers.
type EthereumClient interface {
	TxSender
	PendingNonceAt(ctx context.Context, account ethereum.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ether.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash ethereum.Hash) (*types.Transaction, bool, error)
}

// BaseBlockchain is the network provider. Reads go to the clients in order
// and fall back to the next one on error. Transactions are sent through the
// broadcaster.
type BaseBlockchain struct {
	clients     []EthereumClient
	urls        []string
	broadcaster *Broadcaster
	timeout     time.Duration
}

func NewBaseBlockchain(
	clients []EthereumClient,
	urls []string,
	broadcaster *Broadcaster,
	timeout time.Duration) *BaseBlockchain {
	return &BaseBlockchain{
		clients:     clients,
		urls:        urls,
		broadcaster: broadcaster,
		timeout:     timeout,
	}
}

// NewBaseBlockchainFromClients uses the dialed clients for both reads and broadcasting.
func NewBaseBlockchainFromClients(clients []*ethclient.Client, urls []string, timeout time.Duration) *BaseBlockchain {
	readers := make([]EthereumClient, 0, len(clients))
	senders := make(map[string]TxSender, len(clients))
	for i, client := range clients {
		readers = append(readers, client)
		senders[urls[i]] = client
	}
	return NewBaseBlockchain(readers, urls, NewBroadcasterWithSenders(senders, timeout), timeout)
}

func (self *BaseBlockchain) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = ensureContext(ctx)
	if self.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, self.timeout)
}

// fallback runs call against each client until one succeeds.
func (self *BaseBlockchain) fallback(ctx context.Context, name string, call func(ctx context.Context, client EthereumClient) error) error {
	if len(self.clients) == 0 {
		return errors.New("no ethereum client configured")
	}
	var err error
	for i, client := range self.clients {
		err = func() error {
			cctx, cancel := self.callContext(ctx)
			defer cancel()
			return call(cctx, client)
		}()
		if err == nil {
			return nil
		}
		log.Printf("FALLBACK: %s on ether client %s failed, getting err %v, trying next one...", name, self.urls[i], err)
	}
	return err
}

func (self *BaseBlockchain) PendingNonceAt(ctx context.Context, account ethereum.Address) (uint64, error) {
	var nonce uint64
	err := self.fallback(ctx, "PendingNonceAt", func(ctx context.Context, client EthereumClient) (err error) {
		nonce, err = client.PendingNonceAt(ctx, account)
		return err
	})
	return nonce, err
}

func (self *BaseBlockchain) EstimateGas(ctx context.Context, msg ether.CallMsg) (uint64, error) {
	var gas uint64
	err := self.fallback(ctx, "EstimateGas", func(ctx context.Context, client EthereumClient) (err error) {
		gas, err = client.EstimateGas(ctx, msg)
		return err
	})
	return gas, err
}

func (self *BaseBlockchain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := self.fallback(ctx, "SuggestGasPrice", func(ctx context.Context, client EthereumClient) (err error) {
		price, err = client.SuggestGasPrice(ctx)
		return err
	})
	return price, err
}

// SendTransaction succeeds if at least one node accepted the transaction.
func (self *BaseBlockchain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	failures, ok := self.broadcaster.Broadcast(ctx, tx)
	for url, err := range failures {
		log.Printf("Broadcasting tx %s to %s failed: %s", tx.Hash().Hex(), url, err)
	}
	if ok {
		return nil
	}
	return joinFailures(failures)
}

// TransactionByHash returns ether.NotFound when no node returned the
// transaction and at least one node answered that it does not know it,
// even if other nodes failed with transport errors. The answering node is
// taken as authoritative, so the caller reports not_found rather than a
// lookup failure. Only when every node failed in transport is that error
// returned as is.
func (self *BaseBlockchain) TransactionByHash(ctx context.Context, hash ethereum.Hash) (*types.Transaction, bool, error) {
	var (
		tx       *types.Transaction
		pending  bool
		notFound bool
	)
	err := self.fallback(ctx, "TransactionByHash", func(ctx context.Context, client EthereumClient) (err error) {
		tx, pending, err = client.TransactionByHash(ctx, hash)
		if errors.Is(err, ether.NotFound) {
			notFound = true
		}
		return err
	})
	if err != nil && notFound {
		return nil, false, ether.NotFound
	}
	return tx, pending, err
}

func joinFailures(failures map[string]error) error {
	if len(failures) == 0 {
		return errors.New("no node to broadcast to")
	}
	urls := make([]string, 0, len(failures))
	for url := range failures {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	parts := make([]string, 0, len(urls))
	for _, url := range urls {
		parts = append(parts, fmt.Sprintf("%s: %s", url, failures[url]))
	}
	return fmt.Errorf("broadcast rejected by all nodes: %s", strings.Join(parts, "; "))
}

// DialClients connects to every endpoint, retrying each dial a few times
// before giving up.
func DialClients(urls []string, attempts uint, delay time.Duration) ([]*ethclient.Client, error) {
	clients := make([]*ethclient.Client, 0, len(urls))
	for _, url := range urls {
		var client *ethclient.Client
		err := retry.Do(
			func() (err error) {
				client, err = ethclient.Dial(url)
				return err
			},
			retry.Attempts(attempts),
			retry.Delay(delay),
			retry.OnRetry(func(n uint, err error) {
				log.Printf("Dialing ether client %s failed (attempt %d): %s", url, n+1, err)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("cannot dial %s: %w", url, err)
		}
		clients = append(clients, client)
	}
	return clients, nil
}
