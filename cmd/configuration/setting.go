package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/core"
)

const (
	DEFAULT_CHAIN_ID    uint64 = 11155111
	DEFAULT_TOKEN              = "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"
	DEFAULT_FROM               = "0xE0B2A968Fc566bce543E9da6D3893FfE1170B833"
	DEFAULT_TO                 = "0x55Eca4d519Ca2BdC60C8f886aB00B5281772E517"
	DEFAULT_AMOUNT             = "10000"
	DEFAULT_PERIOD             = 10 * time.Second
	DEFAULT_RPC_TIMEOUT        = 30 * time.Second
)

// TransferSettingFile is the non secret part of the configuration.
type TransferSettingFile struct {
	Endpoint            string   `json:"endpoint"`
	BackupEndpoints     []string `json:"backup_endpoints"`
	ChainID             uint64   `json:"chain_id"`
	Token               string   `json:"token"`
	From                string   `json:"from"`
	To                  string   `json:"to"`
	Amount              string   `json:"amount"`
	PeriodSeconds       int64    `json:"period_seconds"`
	RPCTimeoutSeconds   *int64   `json:"rpc_timeout_seconds"`
	ActivityStoragePath string   `json:"activity_storage_path"`
	SentryDSN           string   `json:"sentry_dsn"`
}

// TransferSecretFile holds the signer key and the API secrets.
type TransferSecretFile struct {
	KeystorePath string `json:"keystore_path"`
	Passphrase   string `json:"passphrase"`
	Secret       string `json:"secret"`
	ReadOnly     string `json:"readonly"`
}

// Period returns how often transfers are triggered.
func (self TransferSettingFile) Period() time.Duration {
	if self.PeriodSeconds <= 0 {
		return DEFAULT_PERIOD
	}
	return time.Duration(self.PeriodSeconds) * time.Second
}

// RPCTimeout returns the timeout of one node call, 0 means none.
func (self TransferSettingFile) RPCTimeout() time.Duration {
	if self.RPCTimeoutSeconds == nil {
		return DEFAULT_RPC_TIMEOUT
	}
	return time.Duration(*self.RPCTimeoutSeconds) * time.Second
}

func (self *TransferSettingFile) applyDefaults() {
	if self.ChainID == 0 {
		self.ChainID = DEFAULT_CHAIN_ID
	}
	if self.Token == "" {
		self.Token = DEFAULT_TOKEN
	}
	if self.From == "" {
		self.From = DEFAULT_FROM
	}
	if self.To == "" {
		self.To = DEFAULT_TO
	}
	if self.Amount == "" {
		self.Amount = DEFAULT_AMOUNT
	}
}

// TransferSetting validates the file and returns the parameters of every
// transfer.
func (self TransferSettingFile) TransferSetting() (core.TransferSetting, error) {
	for name, addr := range map[string]string{"token": self.Token, "from": self.From, "to": self.To} {
		if !ethereum.IsHexAddress(addr) {
			return core.TransferSetting{}, fmt.Errorf("%s address %q is invalid", name, addr)
		}
	}
	amount, ok := new(big.Int).SetString(self.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return core.TransferSetting{}, fmt.Errorf("amount %q is not a non negative integer", self.Amount)
	}
	if self.Endpoint == "" {
		return core.TransferSetting{}, errors.New("endpoint is required")
	}
	return core.TransferSetting{
		Token:   ethereum.HexToAddress(self.Token),
		From:    ethereum.HexToAddress(self.From),
		To:      ethereum.HexToAddress(self.To),
		Amount:  amount,
		ChainID: new(big.Int).SetUint64(self.ChainID),
	}, nil
}

// ParseSetting reads a setting file, filling unset transfer parameters with
// the defaults.
func ParseSetting(raw []byte) (TransferSettingFile, error) {
	result := TransferSettingFile{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, err
	}
	result.applyDefaults()
	return result, nil
}

func GetSettingFromFile(path string) (TransferSettingFile, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return TransferSettingFile{}, err
	}
	return ParseSetting(raw)
}

func GetSecretFromFile(path string) (TransferSecretFile, error) {
	result := TransferSecretFile{}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(raw, &result)
	return result, err
}
