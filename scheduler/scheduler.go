package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	subscription "github.com/karangoraniya/subscription-icp"
	"github.com/karangoraniya/subscription-icp/common"
)

// Scheduler starts one transfer attempt per tick of its runner. It keeps no
// state of its own, overlapping attempts are turned away by the core.
type Scheduler struct {
	runner TransferRunner
	core   subscription.TransferCore

	mu      sync.Mutex
	stopCh  chan struct{}
	running sync.WaitGroup
}

func NewScheduler(runner TransferRunner, core subscription.TransferCore) *Scheduler {
	return &Scheduler{runner: runner, core: core}
}

func (self *Scheduler) Run() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.stopCh != nil {
		return errors.New("scheduler is running already")
	}
	log.Printf("Scheduler is starting...")
	if err := self.runner.Start(); err != nil {
		return err
	}
	self.stopCh = make(chan struct{})
	self.running.Add(1)
	go self.loop(self.runner.GetTransferTicker(), self.stopCh)
	log.Printf("Scheduler is running...")
	return nil
}

func (self *Scheduler) loop(ticker <-chan time.Time, stopCh <-chan struct{}) {
	defer self.running.Done()
	for {
		log.Printf("waiting for signal from transfer channel")
		select {
		case <-stopCh:
			return
		case t := <-ticker:
			log.Printf("got signal in transfer channel with timestamp %d", common.TimeToTimepoint(t))
			go self.RunTransfer()
		}
	}
}

// RunTransfer runs one attempt and logs its result.
func (self *Scheduler) RunTransfer() common.TransferOutcome {
	outcome := self.core.Transfer(context.Background())
	if msg, err := outcome.Result(); err != nil {
		log.Printf("Transfer attempt ended with %s: %s", outcome.Kind, err)
	} else {
		log.Print(msg)
	}
	return outcome
}

// Stop stops the runner. Attempts already started run to their end.
func (self *Scheduler) Stop() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.stopCh == nil {
		return errors.New("scheduler is not running")
	}
	close(self.stopCh)
	self.running.Wait()
	self.stopCh = nil
	return self.runner.Stop()
}
