package configuration

import (
	"log"
	"path/filepath"

	"github.com/karangoraniya/subscription-icp/common"
	"github.com/karangoraniya/subscription-icp/common/blockchain"
	"github.com/karangoraniya/subscription-icp/http"
)

// cmdDir is the cmd folder of this repository, where the per mode config
// files live.
var cmdDir = filepath.Dir(common.CurrentDir())

func modePaths(name string) SettingPaths {
	return SettingPaths{
		settingPath: filepath.Join(cmdDir, name+"_setting.json"),
		secretPath:  filepath.Join(cmdDir, name+"_secret.json"),
		awsPath:     filepath.Join(cmdDir, name+"_aws.json"),
	}
}

var ConfigPaths = map[string]SettingPaths{
	common.DEV_MODE:        modePaths("dev"),
	common.STAGING_MODE:    modePaths("staging"),
	common.PRODUCTION_MODE: modePaths("production"),
	common.SEPOLIA_MODE:    modePaths("sepolia"),
	common.SIMULATION_MODE: modePaths("simulation"),
}

func GetConfigPaths(transferENV string) SettingPaths {
	paths, found := ConfigPaths[transferENV]
	if !found {
		log.Println("Environment setting paths is not found, using dev...")
		return ConfigPaths[common.DEV_MODE]
	}
	return paths
}

// GetConfig builds the keeper configuration for the running mode. Paths and
// endpoint given on the command line take precedence over the mode defaults.
func GetConfig(transferENV string, authEnbl bool, endpointOW, settingOW, secretOW string) *Config {
	setPath := GetConfigPaths(transferENV)
	if settingOW != "" {
		setPath.settingPath = settingOW
	}
	if secretOW != "" {
		setPath.secretPath = secretOW
	}

	setting, err := GetSettingFromFile(setPath.settingPath)
	if err != nil {
		log.Fatalf("Config file %s is not found. Check that TRANSFER_ENV is set correctly. Error: %s", setPath.settingPath, err)
	}
	if endpointOW != "" {
		log.Printf("overwriting Endpoint with %s\n", endpointOW)
		setting.Endpoint = endpointOW
	}
	transferSetting, err := setting.TransferSetting()
	if err != nil {
		log.Fatalf("Config file %s is invalid: %s", setPath.settingPath, err)
	}
	secret, err := GetSecretFromFile(setPath.secretPath)
	if err != nil {
		log.Fatalf("Secret file %s cannot be read: %s", setPath.secretPath, err)
	}

	alerter, err := common.NewRavenAlerter(setting.SentryDSN, transferENV)
	if err != nil {
		log.Fatalf("Can not create sentry client: %s", err)
	}

	config := &Config{
		Signer:                  blockchain.NewEthereumSigner(secret.KeystorePath, secret.Passphrase, transferSetting.ChainID),
		Alerter:                 alerter,
		EnableAuthentication:    authEnbl,
		AuthEngine:              http.KeeperAuthentication{Secret: secret.Secret, ReadOnly: secret.ReadOnly},
		EthereumEndpoint:        setting.Endpoint,
		BackupEthereumEndpoints: setting.BackupEndpoints,
		TransferSetting:         transferSetting,
		Period:                  setting.Period(),
		RPCTimeout:              setting.RPCTimeout(),
	}
	config.AddStorageConfig(setting)
	config.AddRunnerConfig(transferENV)
	config.AddArchiveConfig(setPath.awsPath)
	config.AddBlockchainConfig()
	return config
}
