package configuration

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/common"
	"github.com/karangoraniya/subscription-icp/core/storage"
)

func TestParseSettingDefaults(t *testing.T) {
	setting, err := ParseSetting([]byte(`{"endpoint": "http://127.0.0.1:8545"}`))
	if err != nil {
		t.Fatal(err)
	}
	transfer, err := setting.TransferSetting()
	if err != nil {
		t.Fatal(err)
	}
	if transfer.ChainID.Cmp(big.NewInt(11155111)) != 0 {
		t.Errorf("wrong default chain id: %s", transfer.ChainID)
	}
	if transfer.Token != ethereum.HexToAddress(DEFAULT_TOKEN) ||
		transfer.From != ethereum.HexToAddress(DEFAULT_FROM) ||
		transfer.To != ethereum.HexToAddress(DEFAULT_TO) {
		t.Errorf("wrong default addresses: %+v", transfer)
	}
	if transfer.Amount.Cmp(big.NewInt(10000)) != 0 {
		t.Errorf("wrong default amount: %s", transfer.Amount)
	}
	if setting.Period() != 10*time.Second {
		t.Errorf("wrong default period: %s", setting.Period())
	}
	if setting.RPCTimeout() != 30*time.Second {
		t.Errorf("wrong default rpc timeout: %s", setting.RPCTimeout())
	}
}

func TestParseSettingOverrides(t *testing.T) {
	setting, err := ParseSetting([]byte(`{
		"endpoint": "http://127.0.0.1:8545",
		"chain_id": 1337,
		"amount": "42",
		"period_seconds": 3,
		"rpc_timeout_seconds": 0
	}`))
	if err != nil {
		t.Fatal(err)
	}
	transfer, err := setting.TransferSetting()
	if err != nil {
		t.Fatal(err)
	}
	if transfer.ChainID.Uint64() != 1337 || transfer.Amount.Int64() != 42 {
		t.Errorf("overrides are not applied: %+v", transfer)
	}
	if setting.Period() != 3*time.Second {
		t.Errorf("wrong period: %s", setting.Period())
	}
	if setting.RPCTimeout() != 0 {
		t.Errorf("explicit 0 rpc timeout must disable the timeout, got: %s", setting.RPCTimeout())
	}
}

func TestInvalidSetting(t *testing.T) {
	var tests = []struct {
		msg string
		raw string
	}{
		{"missing endpoint", `{}`},
		{"bad token", `{"endpoint": "x", "token": "0x123"}`},
		{"negative amount", `{"endpoint": "x", "amount": "-1"}`},
		{"non numeric amount", `{"endpoint": "x", "amount": "ten"}`},
	}
	for _, tc := range tests {
		setting, err := ParseSetting([]byte(tc.raw))
		if err != nil {
			t.Fatalf("%s: %s", tc.msg, err)
		}
		if _, err = setting.TransferSetting(); err == nil {
			t.Errorf("%s: expected an error", tc.msg)
		}
	}
	if _, err := ParseSetting([]byte(`{`)); err == nil {
		t.Errorf("expected an error for malformed json")
	}
}

func TestSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.json")
	if err := os.WriteFile(path, []byte(`{"keystore_path": "k", "passphrase": "p", "secret": "s", "readonly": "r"}`), 0600); err != nil {
		t.Fatal(err)
	}
	secret, err := GetSecretFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if secret != (TransferSecretFile{KeystorePath: "k", Passphrase: "p", Secret: "s", ReadOnly: "r"}) {
		t.Errorf("wrong secret: %+v", secret)
	}
}

func TestConfigPaths(t *testing.T) {
	if GetConfigPaths("unknown") != ConfigPaths[common.DEV_MODE] {
		t.Errorf("unknown mode must use dev paths")
	}
	if filepath.Base(GetConfigPaths(common.SEPOLIA_MODE).settingPath) != "sepolia_setting.json" {
		t.Errorf("wrong sepolia setting path: %s", GetConfigPaths(common.SEPOLIA_MODE).settingPath)
	}
}

func TestStorageConfig(t *testing.T) {
	config := &Config{}
	config.AddStorageConfig(TransferSettingFile{})
	if _, ok := config.ActivityStorage.(*storage.RamStorage); !ok {
		t.Errorf("expected ram storage without a path, got: %T", config.ActivityStorage)
	}
	config.AddStorageConfig(TransferSettingFile{ActivityStoragePath: filepath.Join(t.TempDir(), "activities.db")})
	bolt, ok := config.ActivityStorage.(*storage.BoltStorage)
	if !ok {
		t.Fatalf("expected bolt storage with a path, got: %T", config.ActivityStorage)
	}
	bolt.Close()
}
