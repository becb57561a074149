package http

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sentry"
	"github.com/gin-gonic/gin"
	subscription "github.com/karangoraniya/subscription-icp"
	"github.com/karangoraniya/subscription-icp/common"
)

type HTTPServer struct {
	core        subscription.TransferCore
	host        string
	authEnabled bool
	auth        Authentication
	r           *gin.Engine
}

const MAX_NONCE_DIFFERENCE int64 = 30000 // 30s in milisec

// MAX_ACTIVITY_RANGE is the default width of an activity query with no
// fromTime, in milisec.
const MAX_ACTIVITY_RANGE uint64 = 86400000

// MAX_ACTIVITY_TIME is the largest milisec timepoint that still fits in
// nanoseconds.
const MAX_ACTIVITY_TIME uint64 = math.MaxUint64 / 1000000

// IsIntime returns true if nonce, a unix time in milisecond, is within 30s of
// server time.
func IsIntime(nonce string) bool {
	serverTime := common.GetTimepoint()
	log.Printf("Server time: %d, None: %s", serverTime, nonce)
	nonceInt, err := strconv.ParseInt(nonce, 10, 64)
	if err != nil {
		log.Printf("IsIntime returns false, err: %v", err)
		return false
	}
	difference := nonceInt - int64(serverTime)
	if difference < -MAX_NONCE_DIFFERENCE || difference > MAX_NONCE_DIFFERENCE {
		log.Printf("IsIntime returns false, nonce: %d, serverTime: %d, difference: %d", nonceInt, int64(serverTime), difference)
		return false
	}
	return true
}

func eligible(ups, allowedPerms []Permission) bool {
	for _, up := range ups {
		for _, ap := range allowedPerms {
			if up == ap {
				return true
			}
		}
	}
	return false
}

func fail(c *gin.Context, reason string) {
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": false,
			"reason":  reason,
		},
	)
}

// signed message (message = url encoded both query params and post params, keys are sorted) in "signed" header
// using HMAC512
// params must contain "nonce" which is the unixtime in millisecond. The nonce will be invalid
// if it differs from server time more than 30s
func (self *HTTPServer) Authenticated(c *gin.Context, requiredParams []string, perms []Permission) (url.Values, bool) {
	err := c.Request.ParseForm()
	if err != nil {
		fail(c, "Malformed request package")
		return c.Request.Form, false
	}

	if !self.authEnabled {
		return c.Request.Form, true
	}

	params := c.Request.Form
	log.Printf("Form params: %s\n", params)
	if !IsIntime(params.Get("nonce")) {
		fail(c, "Your nonce is invalid")
		return c.Request.Form, false
	}

	for _, p := range requiredParams {
		if params.Get(p) == "" {
			fail(c, fmt.Sprintf("Required param (%s) is missing. Param name is case sensitive", p))
			return c.Request.Form, false
		}
	}

	signed := c.GetHeader("signed")
	message := c.Request.Form.Encode()
	userPerms := self.auth.GetPermission(signed, message)
	if eligible(userPerms, perms) {
		return params, true
	}
	if len(userPerms) == 0 {
		fail(c, "Invalid signed token")
	} else {
		fail(c, "You don't have permission to proceed")
	}
	return params, false
}

func (self *HTTPServer) GetNonce(c *gin.Context) {
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"data":    self.core.NonceState(),
		},
	)
}

func (self *HTTPServer) GetAddress(c *gin.Context) {
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"data":    self.core.GetAddress().Hex(),
		},
	)
}

func (self *HTTPServer) GetActivities(c *gin.Context) {
	log.Printf("Getting all activity records \n")
	_, ok := self.Authenticated(c, []string{}, []Permission{ReadOnlyPermission, TransferPermission})
	if !ok {
		return
	}
	fromTime, _ := strconv.ParseUint(c.Query("fromTime"), 10, 64)
	toTime, _ := strconv.ParseUint(c.Query("toTime"), 10, 64)
	if toTime == 0 {
		toTime = common.GetTimepoint()
	}
	if fromTime > MAX_ACTIVITY_TIME || toTime > MAX_ACTIVITY_TIME {
		fail(c, fmt.Sprintf("time must not be greater than %d", MAX_ACTIVITY_TIME))
		return
	}
	if fromTime == 0 && toTime > MAX_ACTIVITY_RANGE {
		fromTime = toTime - MAX_ACTIVITY_RANGE
	}

	data, err := self.core.GetRecords(fromTime*1000000, toTime*1000000)
	if err != nil {
		fail(c, err.Error())
		return
	}
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"data":    data,
		},
	)
}

func (self *HTTPServer) ImmediatePendingActivities(c *gin.Context) {
	log.Printf("Getting all immediate pending activity records \n")
	_, ok := self.Authenticated(c, []string{}, []Permission{ReadOnlyPermission, TransferPermission})
	if !ok {
		return
	}
	data, err := self.core.GetPendingActivities()
	if err != nil {
		fail(c, err.Error())
		return
	}
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"data":    data,
		},
	)
}

// Transfer runs one attempt right away. It shares the in-flight guard with
// the scheduler, so it fails with a skipped outcome while a tick is running.
func (self *HTTPServer) Transfer(c *gin.Context) {
	_, ok := self.Authenticated(c, []string{}, []Permission{TransferPermission})
	if !ok {
		return
	}
	// the attempt must not be cut short by the client going away
	outcome := self.core.Transfer(context.Background())
	msg, err := outcome.Result()
	if err != nil {
		c.JSON(
			http.StatusOK,
			gin.H{
				"success": false,
				"outcome": outcome.Kind,
				"stage":   outcome.Stage,
				"reason":  err.Error(),
			},
		)
		return
	}
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"outcome": outcome.Kind,
			"tx":      outcome.TxHash.Hex(),
			"nonce":   outcome.MinedNonce,
			"data":    msg,
		},
	)
}

func (self *HTTPServer) GetTimeServer(c *gin.Context) {
	c.JSON(
		http.StatusOK,
		gin.H{
			"success": true,
			"data":    common.GetTimestamp(),
		},
	)
}

func (self *HTTPServer) register() {
	self.r.GET("/timeserver", self.GetTimeServer)
	self.r.GET("/nonce", self.GetNonce)
	self.r.GET("/address", self.GetAddress)
	self.r.GET("/activities", self.GetActivities)
	self.r.GET("/immediate-pending-activities", self.ImmediatePendingActivities)
	self.r.POST("/transfer", self.Transfer)
}

func (self *HTTPServer) Run() {
	self.register()
	if err := self.r.Run(self.host); err != nil {
		log.Fatalf("HTTP server stopped: %s", err)
	}
}

func NewHTTPServer(
	core subscription.TransferCore,
	host string,
	enableAuth bool,
	authEngine Authentication,
	sentryCli *raven.Client) *HTTPServer {

	r := gin.Default()
	r.Use(sentry.Recovery(
		sentryCli,
		false,
	))
	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowHeaders("signed")
	corsConfig.AllowAllOrigins = true
	corsConfig.MaxAge = 5 * time.Minute
	r.Use(cors.New(corsConfig))

	return &HTTPServer{
		core, host, enableAuth, authEngine, r,
	}
}
