package blockchain

import (
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Signer holds the key of the sending account. GetAddress must return the
// same address for the life of the signer.
type Signer interface {
	GetAddress() ethereum.Address
	Sign(*types.Transaction) (*types.Transaction, error)
}

// EthereumSigner signs transactions with an EIP-155 signer bound to one chain.
type EthereumSigner struct {
	opts *bind.TransactOpts
}

func (self EthereumSigner) GetAddress() ethereum.Address {
	return self.opts.From
}

func (self EthereumSigner) Sign(tx *types.Transaction) (*types.Transaction, error) {
	return self.opts.Signer(self.GetAddress(), tx)
}

// NewEthereumSignerFromOpts wraps already unlocked transact options.
func NewEthereumSignerFromOpts(opts *bind.TransactOpts) *EthereumSigner {
	return &EthereumSigner{opts: opts}
}

func NewEthereumSigner(keyPath string, passphrase string, chainID *big.Int) *EthereumSigner {
	var (
		err error
		key io.Reader
	)

	if key, err = os.Open(keyPath); err != nil {
		// try to auto generate the key for development
		if key, err = GenerateDevelopmentKeystoreIfNotExists(err, keyPath, passphrase); err != nil {
			panic(err)
		}
	}

	auth, err := bind.NewTransactorWithChainID(key, passphrase, chainID)
	if err != nil {
		panic(err)
	}
	return &EthereumSigner{opts: auth}
}
