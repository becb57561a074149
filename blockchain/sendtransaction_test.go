package blockchain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	ether "github.com/ethereum/go-ethereum"
	ethereum "github.com/ethereum/go-ethereum/common"
)

type testEstimator struct {
	gas      uint64
	gasErr   error
	price    *big.Int
	priceErr error
	msg      ether.CallMsg
}

func (self *testEstimator) EstimateGas(ctx context.Context, msg ether.CallMsg) (uint64, error) {
	self.msg = msg
	return self.gas, self.gasErr
}

func (self *testEstimator) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return self.price, self.priceErr
}

func testIntent() TransferIntent {
	return TransferIntent{
		Token:   ethereum.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
		Sender:  ethereum.HexToAddress("0x1111111111111111111111111111111111111111"),
		From:    ethereum.HexToAddress("0xE0B2A968Fc566bce543E9da6D3893FfE1170B833"),
		To:      ethereum.HexToAddress("0x55Eca4d519Ca2BdC60C8f886aB00B5281772E517"),
		Amount:  big.NewInt(10000),
		ChainID: big.NewInt(11155111),
		Nonce:   6,
	}
}

func TestBuildTransferFrom(t *testing.T) {
	estimator := &testEstimator{gas: 52000, price: big.NewInt(2000000000)}
	builder, err := NewTransferBuilder(estimator)
	if err != nil {
		t.Fatal(err)
	}
	intent := testIntent()
	tx, err := builder.Build(context.Background(), intent)
	if err != nil {
		t.Fatal(err)
	}

	if tx.Nonce() != intent.Nonce {
		t.Errorf("wrong nonce, expected: %d, got: %d", intent.Nonce, tx.Nonce())
	}
	if tx.Gas() != 52000 {
		t.Errorf("wrong gas limit, expected: %d, got: %d", 52000, tx.Gas())
	}
	if tx.GasPrice().Cmp(big.NewInt(2000000000)) != 0 {
		t.Errorf("wrong gas price: %s", tx.GasPrice())
	}
	if *tx.To() != intent.Token {
		t.Errorf("wrong destination, expected token contract %s, got: %s", intent.Token.Hex(), tx.To().Hex())
	}
	// transferFrom(address,address,uint256)
	if selector := tx.Data()[:4]; !bytes.Equal(selector, []byte{0x23, 0xb8, 0x72, 0xdd}) {
		t.Errorf("wrong method selector: %x", selector)
	}
	if len(tx.Data()) != 4+3*32 {
		t.Errorf("wrong call data length: %d", len(tx.Data()))
	}
	if estimator.msg.From != intent.Sender {
		t.Errorf("gas must be estimated from the sender, got: %s", estimator.msg.From.Hex())
	}
}

func TestBuildFailsOnEstimationError(t *testing.T) {
	estimator := &testEstimator{gasErr: errors.New("execution reverted"), price: big.NewInt(1)}
	builder, err := NewTransferBuilder(estimator)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = builder.Build(context.Background(), testIntent()); err == nil {
		t.Error("expected build to fail when gas estimation fails")
	}

	estimator = &testEstimator{gas: 52000, priceErr: errors.New("timeout")}
	builder, _ = NewTransferBuilder(estimator)
	if _, err = builder.Build(context.Background(), testIntent()); err == nil {
		t.Error("expected build to fail when gas price query fails")
	}
}

func TestBuildRejectsInvalidIntent(t *testing.T) {
	builder, err := NewTransferBuilder(&testEstimator{gas: 1, price: big.NewInt(1)})
	if err != nil {
		t.Fatal(err)
	}
	intent := testIntent()
	intent.ChainID = nil
	if _, err = builder.Build(context.Background(), intent); err == nil {
		t.Error("expected missing chain id to be rejected")
	}
	intent = testIntent()
	intent.Amount = nil
	if _, err = builder.Build(context.Background(), intent); err == nil {
		t.Error("expected missing amount to be rejected")
	}
}
