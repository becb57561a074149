package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/karangoraniya/subscription-icp/common"
	"github.com/karangoraniya/subscription-icp/http"
	"github.com/spf13/cobra"
)

// logDir is located at base of this repository.
var logDir = filepath.Join(filepath.Dir(filepath.Dir(common.CurrentDir())), "log")
var noAuthEnable bool
var servPort int = 8000
var endpointOW string
var settingOW string
var secretOW string
var stdoutLog bool
var dryrun bool

func serverStart(_ *cobra.Command, _ []string) {
	numCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(numCPU)
	configLog(stdoutLog)

	//get configuration from ENV variable
	transferENV := common.RunningMode()
	config := GetConfigFromENV(transferENV)
	if config.Archive != nil {
		backupLog(config.Archive)
	}

	transferCore := CreateTransferCore(config)
	log.Printf("Keeper address: %s, initial nonce state: %s", transferCore.GetAddress().Hex(), transferCore.NonceState())

	servPortStr := fmt.Sprintf(":%d", servPort)
	server := http.NewHTTPServer(
		transferCore,
		servPortStr,
		config.EnableAuthentication,
		config.AuthEngine,
		config.Alerter.Client(),
	)

	if dryrun {
		log.Printf("Dry run finished. All configs are corrected")
		return
	}

	sched := CreateScheduler(config, transferCore)
	if err := sched.Run(); err != nil {
		log.Panic(err)
	}
	go stopOnSignal(sched)
	server.Run()
}

type stopper interface {
	Stop() error
}

func stopOnSignal(s stopper) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Printf("Got signal %s, stopping scheduler", sig)
	if err := s.Stop(); err != nil {
		log.Printf("Stopping scheduler failed: %s", err)
	}
	os.Exit(0)
}

var startServer = &cobra.Command{
	Use:   "server ",
	Short: "initiate the server with specific config",
	Long: `Start the transfer keeper with preset Environment and
Allow overwriting some parameter`,
	Example: "TRANSFER_ENV=sepolia ./cmd server --noauth -p 8000",
	Run:     serverStart,
}

func init() {
	// start server flags.
	startServer.Flags().BoolVarP(&noAuthEnable, "noauth", "", false, "disable authentication")
	startServer.Flags().IntVarP(&servPort, "port", "p", 8000, "server port")
	startServer.Flags().StringVar(&endpointOW, "endpoint", "", "endpoint, default to configuration file")
	startServer.Flags().StringVar(&settingOW, "config", "", "setting file, default to the running mode's file")
	startServer.Flags().StringVar(&secretOW, "secret", "", "secret file, default to the running mode's file")
	startServer.Flags().BoolVarP(&stdoutLog, "log-to-stdout", "", false, "send log to both log file and stdout terminal")
	startServer.Flags().BoolVarP(&dryrun, "dryrun", "", false, "only test if all the configs are set correctly, will not actually run the keeper")

	RootCmd.AddCommand(startServer)
}
