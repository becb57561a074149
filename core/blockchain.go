package core

import (
	"context"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/karangoraniya/subscription-icp/blockchain"
)

// Blockchain is the interface wraps around all core methods to interact
// with Ethereum blockchain.
type Blockchain interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionByHash(ctx context.Context, hash ethereum.Hash) (*types.Transaction, bool, error)
}

// TransactionBuilder assembles the unsigned transaction of an attempt.
type TransactionBuilder interface {
	Build(ctx context.Context, intent blockchain.TransferIntent) (*types.Transaction, error)
}
