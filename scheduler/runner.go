package scheduler

import (
	"time"
)

// TransferRunner is the common interface of runners that periodically trigger
// transfer attempts.
type TransferRunner interface {
	// Start initializes the ticker. It must be called before runner is usable.
	Start() error
	// Stop stops the ticker and free usage resources.
	// It must only be called after runner is started.
	Stop() error

	// GetTransferTicker should only be called after Start() is executed.
	GetTransferTicker() <-chan time.Time
}

// TickerRunner is an implementation of TransferRunner that use simple time ticker.
type TickerRunner struct {
	tduration time.Duration
	tclock    *time.Ticker
}

func (self *TickerRunner) GetTransferTicker() <-chan time.Time {
	return self.tclock.C
}

func (self *TickerRunner) Start() error {
	self.tclock = time.NewTicker(self.tduration)
	return nil
}

func (self *TickerRunner) Stop() error {
	self.tclock.Stop()
	return nil
}

// NewTickerRunner creates a new instance of TickerRunner ticking every tduration.
func NewTickerRunner(tduration time.Duration) *TickerRunner {
	return &TickerRunner{tduration: tduration}
}
