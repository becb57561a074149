package configuration

import (
	"log"
	"time"

	"github.com/karangoraniya/subscription-icp/common"
	"github.com/karangoraniya/subscription-icp/common/archive"
	"github.com/karangoraniya/subscription-icp/common/blockchain"
	"github.com/karangoraniya/subscription-icp/core"
	"github.com/karangoraniya/subscription-icp/core/storage"
	"github.com/karangoraniya/subscription-icp/http"
	"github.com/karangoraniya/subscription-icp/scheduler"
	"github.com/karangoraniya/subscription-icp/scheduler/http_runner"
)

const (
	DIAL_ATTEMPTS uint          = 5
	DIAL_DELAY    time.Duration = 2 * time.Second
	// SIMULATION_RUNNER_PORT is where /ttick is served in simulation mode.
	SIMULATION_RUNNER_PORT int = 8001
)

type SettingPaths struct {
	settingPath string
	secretPath  string
	awsPath     string
}

type Config struct {
	ActivityStorage core.ActivityStorage
	Archive         archive.Archive
	TransferRunner  scheduler.TransferRunner
	Signer          blockchain.Signer
	Alerter         *common.RavenAlerter

	EnableAuthentication bool
	AuthEngine           http.Authentication

	EthereumEndpoint        string
	BackupEthereumEndpoints []string
	Blockchain              *blockchain.BaseBlockchain

	TransferSetting core.TransferSetting
	Period          time.Duration
	RPCTimeout      time.Duration
}

func (self *Config) AddStorageConfig(setting TransferSettingFile) {
	if setting.ActivityStoragePath == "" {
		log.Printf("No activity storage path, keeping activities in memory")
		self.ActivityStorage = storage.NewRamStorage()
		return
	}
	activityStorage, err := storage.NewBoltStorage(setting.ActivityStoragePath)
	if err != nil {
		panic(err)
	}
	self.ActivityStorage = activityStorage
}

func (self *Config) AddRunnerConfig(transferENV string) {
	if transferENV == common.SIMULATION_MODE {
		runner, err := http_runner.NewHttpRunner(http_runner.WithHttpRunnerPort(SIMULATION_RUNNER_PORT))
		if err != nil {
			log.Fatalf("failed to create HTTP runner: %s", err.Error())
		}
		self.TransferRunner = runner
		return
	}
	self.TransferRunner = scheduler.NewTickerRunner(self.Period)
}

func (self *Config) AddArchiveConfig(awsPath string) {
	awsConf, err := archive.GetAWSconfigFromFile(awsPath)
	if err != nil {
		log.Printf("AWS config %s is not loaded, log backup is disabled: %s", awsPath, err)
		return
	}
	if !awsConf.Enabled() {
		log.Printf("AWS config has no region or bucket, log backup is disabled")
		return
	}
	self.Archive = archive.NewS3Archive(awsConf)
}

func (self *Config) AddBlockchainConfig() {
	endpoints := append([]string{self.EthereumEndpoint}, self.BackupEthereumEndpoints...)
	clients, err := blockchain.DialClients(endpoints, DIAL_ATTEMPTS, DIAL_DELAY)
	if err != nil {
		log.Panicf("Can not dial ethereum nodes: %s", err)
	}
	self.Blockchain = blockchain.NewBaseBlockchainFromClients(clients, endpoints, self.RPCTimeout)
}
