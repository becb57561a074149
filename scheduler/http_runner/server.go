package http_runner

import (
	"context"
	"errors"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/raven-go"
	"github.com/gin-contrib/sentry"
	"github.com/gin-gonic/gin"
	"github.com/karangoraniya/subscription-icp/common"
)

// MAX_TIMESPOT is the default time point to return in case the
// timestamp parameter in request is omit or malformed.
const MAX_TIMESPOT uint64 = math.MaxUint64

// HttpRunnerServer is the HTTP ticker server.
type HttpRunnerServer struct {
	runner   *HttpRunner
	host     string
	r        *gin.Engine
	http     *http.Server
	notifyCh chan struct{}
}

// getTimePoint returns the timepoint from query parameter.
// If no timestamp parameter is supplied, or it is invalid, returns the current one.
func getTimePoint(c *gin.Context) uint64 {
	timestamp := c.DefaultQuery("timestamp", "")
	if timestamp == "" {
		return common.GetTimepoint()
	}
	timepoint, err := strconv.ParseUint(timestamp, 10, 64)
	if err != nil || timepoint == MAX_TIMESPOT {
		log.Printf("Interpreted timestamp(%s) to now\n", timestamp)
		return common.GetTimepoint()
	}
	log.Printf("Interpreted timestamp(%s) to %d\n", timestamp, timepoint)
	return timepoint
}

func (self *HttpRunnerServer) ttick(c *gin.Context) {
	timepoint := getTimePoint(c)
	timeout := time.NewTimer(self.runner.tickTimeout)
	defer timeout.Stop()
	select {
	case self.runner.tticker <- common.TimepointToTime(timepoint):
	case <-c.Request.Context().Done():
		return
	case <-timeout.C:
		c.JSON(
			http.StatusServiceUnavailable,
			gin.H{
				"success": false,
				"reason":  "no scheduler is taking ticks",
			},
		)
		return
	}
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
		},
	)
}

func (self *HttpRunnerServer) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// register setups the gin.Engine instance by registers HTTP handlers.
func (self *HttpRunnerServer) register() {
	self.r.GET("/ping", self.ping)
	self.r.GET("/ttick", self.ttick)
}

// Start creates the HTTP server if needed and starts it.
// The HTTP server is running in foreground.
// This function always return a non-nil error.
func (self *HttpRunnerServer) Start() error {
	if self.http != nil {
		return errors.New("server start already")
	}
	self.http = &http.Server{
		Handler: self.r,
	}

	lis, err := net.Listen("tcp", self.host)
	if err != nil {
		close(self.notifyCh)
		return err
	}

	// if port is not provided, use a random one and set it back to runner.
	if self.runner.port == 0 {
		_, listenedPort, sErr := net.SplitHostPort(lis.Addr().String())
		if sErr != nil {
			close(self.notifyCh)
			return sErr
		}
		port, sErr := strconv.Atoi(listenedPort)
		if sErr != nil {
			close(self.notifyCh)
			return sErr
		}
		self.runner.port = port
	}
	close(self.notifyCh)
	return self.http.Serve(lis)
}

// Stop shutdowns the HTTP server and free the resources.
// It returns an error if the server is shutdown already.
func (self *HttpRunnerServer) Stop() error {
	if self.http == nil {
		return errors.New("server stop already")
	}
	err := self.http.Shutdown(context.Background())
	self.http = nil
	return err
}

// NewHttpRunnerServer creates a new instance of HttpRunnerServer.
func NewHttpRunnerServer(runner *HttpRunner, host string) *HttpRunnerServer {
	r := gin.Default()
	r.Use(sentry.Recovery(raven.DefaultClient, false))
	server := &HttpRunnerServer{
		runner:   runner,
		host:     host,
		r:        r,
		http:     nil,
		notifyCh: make(chan struct{}),
	}
	server.register()
	return server
}
