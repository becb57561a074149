package core

import (
	"math/big"

	ethereum "github.com/ethereum/go-ethereum/common"
)

// TransferSetting holds the fixed parameters of every transfer.
type TransferSetting struct {
	Token   ethereum.Address
	From    ethereum.Address
	To      ethereum.Address
	Amount  *big.Int
	ChainID *big.Int
}
