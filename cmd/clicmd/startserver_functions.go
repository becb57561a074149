package cmd

import (
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/karangoraniya/subscription-icp/blockchain"
	"github.com/karangoraniya/subscription-icp/cmd/configuration"
	"github.com/karangoraniya/subscription-icp/common/archive"
	"github.com/karangoraniya/subscription-icp/common/blockchain/nonce"
	"github.com/karangoraniya/subscription-icp/core"
	"github.com/karangoraniya/subscription-icp/scheduler"
	"github.com/robfig/cron"
	"gopkg.in/natefinch/lumberjack.v2"
)

const LOG_FILE_NAME string = "keeper.log"

var logFilePattern = regexp.MustCompile(`^keeper.*\.log$`)

// backupLog uploads rotated log files to the archive daily and removes the
// local copies that made it there intact.
func backupLog(arch archive.Archive) {
	c := cron.New()
	err := c.AddFunc("@daily", func() {
		files, err := ioutil.ReadDir(logDir)
		if err != nil {
			log.Printf("ERROR: Log backup: Can not view log folder")
			return
		}
		for _, file := range files {
			if file.IsDir() || !logFilePattern.MatchString(file.Name()) {
				continue
			}
			path := filepath.Join(logDir, file.Name())
			log.Printf("File name is %s", file.Name())
			if err := arch.UploadFile(arch.GetLogBucketName(), arch.GetLogFolderPath(), path); err != nil {
				log.Printf("ERROR: Log backup: Can not upload Log file %s", err)
				continue
			}
			// the live log file is uploaded but kept
			if file.Name() == LOG_FILE_NAME {
				continue
			}
			ok, err := arch.CheckFileIntergrity(arch.GetLogBucketName(), arch.GetLogFolderPath(), path)
			if !ok || (err != nil) {
				log.Printf("ERROR: Log backup: File intergrity is corrupted")
				continue
			}
			if err = os.Remove(path); err != nil {
				log.Printf("ERROR: Log backup: Cannot remove local log file %s", err)
			} else {
				log.Printf("Log backup: backup file %s succesfully", file.Name())
			}
		}
	})
	if err != nil {
		log.Printf("ERROR: Log backup: Can not schedule backup: %s", err)
		return
	}
	c.Start()
}

// set config log: Write log into a predefined file, and rotate log daily
// if stdoutLog is set, the log is also printed on stdout.
func configLog(stdoutLog bool) {
	logger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LOG_FILE_NAME),
		MaxBackups: 0,
		MaxAge:     0, //days
	}

	if stdoutLog {
		mw := io.MultiWriter(os.Stdout, logger)
		log.SetOutput(mw)
	} else {
		log.SetOutput(logger)
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	c := cron.New()
	if err := c.AddFunc("@daily", func() { logger.Rotate() }); err != nil {
		log.Printf("Can not schedule log rotation: %s", err)
		return
	}
	c.Start()
}

// GetConfigFromENV: From ENV variable and overwriting instruction, build the config
func GetConfigFromENV(transferENV string) *configuration.Config {
	log.Printf("Running in %s mode \n", transferENV)
	return configuration.GetConfig(transferENV,
		!noAuthEnable,
		endpointOW,
		settingOW,
		secretOW)
}

func CreateTransferCore(config *configuration.Config) *core.TransferCore {
	builder, err := blockchain.NewTransferBuilder(config.Blockchain)
	if err != nil {
		log.Panicf("Can not create transfer builder: %s", err)
	}
	resolver := nonce.NewResolver(config.Signer.GetAddress(), config.Blockchain, nonce.NewCache())
	return core.NewTransferCore(
		config.Blockchain,
		builder,
		config.Signer,
		resolver,
		config.ActivityStorage,
		config.Alerter,
		config.TransferSetting,
	)
}

func CreateScheduler(config *configuration.Config, transferCore *core.TransferCore) *scheduler.Scheduler {
	return scheduler.NewScheduler(config.TransferRunner, transferCore)
}
