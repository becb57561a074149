package http_runner

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// DEFAULT_TICK_TIMEOUT is how long /ttick waits for a receiver by default.
const DEFAULT_TICK_TIMEOUT = 5 * time.Second

// HttpRunner is an implementation of TransferRunner that runs a HTTP server
// and ticks when it receives a request to /ttick.
type HttpRunner struct {
	port int

	tticker chan time.Time
	// tickTimeout bounds how long a /ttick request waits for the
	// scheduler to take the tick.
	tickTimeout time.Duration

	server *HttpRunnerServer
}

// GetTransferTicker returns the transfer ticker.
func (self *HttpRunner) GetTransferTicker() <-chan time.Time {
	return self.tticker
}

// Port returns the port the ticker server listens on, once started.
func (self *HttpRunner) Port() int {
	return self.port
}

// waitPingResponse waits until HTTP ticker server responses to request.
func (self *HttpRunner) waitPingResponse() error {
	var (
		tickCh   = time.NewTicker(time.Second / 2).C
		expireCh = time.NewTicker(time.Second * 5).C
		client   = http.Client{Timeout: time.Second}
	)

	for {
		select {
		case <-expireCh:
			return errors.New("HTTP ticker does not response to ping request")
		case <-tickCh:
			rsp, dErr := client.Get(fmt.Sprintf("http://127.0.0.1:%d/%s", self.port, "ping"))
			if dErr != nil {
				log.Printf("HTTP server is returning an error: %s, retrying", dErr.Error())
				break
			}
			rsp.Body.Close()
			if rsp.StatusCode == http.StatusOK {
				log.Print("HTTP ticker server is ready")
				return nil
			}
		}
	}
}

// Start initializes and starts the ticker HTTP server.
// It returns an error if the server is started already.
// It is guaranteed that the HTTP server is ready to serve request after
// this method is returned.
func (self *HttpRunner) Start() error {
	if self.server != nil {
		return errors.New("runner start already")
	}
	var addr string
	if self.port != 0 {
		addr = fmt.Sprintf(":%d", self.port)
	}
	self.server = NewHttpRunnerServer(self, addr)
	go func() {
		if err := self.server.Start(); err != nil {
			log.Printf("Http server for runner couldn't start or get stopped. Error: %s", err)
		}
	}()

	// wait until the HTTP server is listening
	<-self.server.notifyCh
	return self.waitPingResponse()
}

// Stop stops the HTTP server. It returns an error if the server is already stopped.
func (self *HttpRunner) Stop() error {
	if self.server == nil {
		return errors.New("runner stop already")
	}
	err := self.server.Stop()
	self.server = nil
	return err
}

// HttpRunnerOption is the option to setup the HttpRunner on creation.
type HttpRunnerOption func(hr *HttpRunner)

// WithHttpRunnerPort setups the HttpRunner instance with the given port.
// Without this option, NewHttpRunner will use a random port.
func WithHttpRunnerPort(port int) HttpRunnerOption {
	return func(hr *HttpRunner) {
		hr.port = port
	}
}

// NewHttpRunner creates a new instance of HttpRunner.
func NewHttpRunner(options ...HttpRunnerOption) (*HttpRunner, error) {
	runner := &HttpRunner{
		tticker:     make(chan time.Time),
		tickTimeout: DEFAULT_TICK_TIMEOUT,
		server:      nil,
	}
	for _, option := range options {
		option(runner)
	}
	return runner, nil
}
