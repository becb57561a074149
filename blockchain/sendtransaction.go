package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	ether "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GasEstimator is the part of the network provider the builder delegates
// gas settings to.
type GasEstimator interface {
	EstimateGas(ctx context.Context, msg ether.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// TransferIntent describes one transferFrom attempt. Sender is the account
// that signs and pays for the transaction, From is the token holder.
type TransferIntent struct {
	Token   ethereum.Address
	Sender  ethereum.Address
	From    ethereum.Address
	To      ethereum.Address
	Amount  *big.Int
	ChainID *big.Int
	Nonce   uint64
}

func (self TransferIntent) validate() error {
	if self.Amount == nil || self.Amount.Sign() < 0 {
		return errors.New("transfer amount must be a non negative number")
	}
	if self.ChainID == nil || self.ChainID.Sign() <= 0 {
		return errors.New("chain id must be set")
	}
	return nil
}

// TransferBuilder assembles unsigned transferFrom transactions.
type TransferBuilder struct {
	abi       abi.ABI
	estimator GasEstimator
}

func NewTransferBuilder(estimator GasEstimator) (*TransferBuilder, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	return &TransferBuilder{abi: parsed, estimator: estimator}, nil
}

func (self *TransferBuilder) packData(method string, params ...interface{}) ([]byte, error) {
	data, err := self.abi.Pack(method, params...)
	if err != nil {
		log.Printf("Builder: can not pack %s data: %s", method, err)
		return nil, err
	}
	return data, nil
}

// Build returns the unsigned transaction for intent. Gas limit and price come
// from one estimate call each, there is no other gas policy.
func (self *TransferBuilder) Build(ctx context.Context, intent TransferIntent) (*types.Transaction, error) {
	if err := intent.validate(); err != nil {
		return nil, err
	}
	data, err := self.packData("transferFrom", intent.From, intent.To, intent.Amount)
	if err != nil {
		return nil, err
	}
	msg := ether.CallMsg{From: intent.Sender, To: &intent.Token, Value: big.NewInt(0), Data: data}
	gasLimit, err := self.estimator.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("can not estimate gas: %w", err)
	}
	gasPrice, err := self.estimator.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("can not get gas price: %w", err)
	}
	log.Printf(
		"Builder: transferFrom %s -> %s, amount %s, token %s, nonce %d, gas limit %d, gas price %s",
		intent.From.Hex(), intent.To.Hex(), intent.Amount.Text(10), intent.Token.Hex(),
		intent.Nonce, gasLimit, gasPrice.Text(10),
	)
	return types.NewTx(&types.LegacyTx{
		Nonce:    intent.Nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &intent.Token,
		Value:    big.NewInt(0),
		Data:     data,
	}), nil
}
