package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/karangoraniya/subscription-icp/common"
	"github.com/karangoraniya/subscription-icp/http/httputil"
)

type assertFn func(t *testing.T, resp *httptest.ResponseRecorder)

type testCase struct {
	msg             string
	endpoint        string
	method          string
	params          url.Values
	secret          string
	expectedSuccess bool
	assert          assertFn
}

var testAddress = ethereum.HexToAddress("0xE0B2A968Fc566bce543E9da6D3893FfE1170B833")

type testCore struct {
	state     common.NonceState
	outcome   common.TransferOutcome
	transfers int
	from, to  uint64
}

func (self *testCore) Transfer(ctx context.Context) common.TransferOutcome {
	self.transfers++
	return self.outcome
}

func (self *testCore) NonceState() common.NonceState { return self.state }

func (self *testCore) GetAddress() ethereum.Address { return testAddress }

func (self *testCore) GetRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error) {
	self.from, self.to = fromTime, toTime
	return []common.ActivityRecord{{Action: "transfer", MiningStatus: common.MiningStatusMined}}, nil
}

func (self *testCore) GetPendingActivities() ([]common.ActivityRecord, error) {
	return []common.ActivityRecord{}, nil
}

func newTestServer(core *testCore, authEnabled bool) *HTTPServer {
	s := &HTTPServer{
		core:        core,
		authEnabled: authEnabled,
		auth:        KeeperAuthentication{Secret: "transfer-secret", ReadOnly: "readonly-secret"},
		r:           gin.Default(),
	}
	s.register()
	return s
}

func runTestCases(t *testing.T, s *HTTPServer, tests []testCase) {
	for _, tc := range tests {
		t.Log(tc.msg)

		params := url.Values{}
		for k, v := range tc.params {
			params[k] = v
		}
		req, tErr := http.NewRequest(tc.method, tc.endpoint, nil)
		if tErr != nil {
			t.Fatal(tErr)
		}
		if tc.method == http.MethodPost {
			req, tErr = http.NewRequest(tc.method, tc.endpoint, strings.NewReader(params.Encode()))
			if tErr != nil {
				t.Fatal(tErr)
			}
			req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
		} else {
			req.URL.RawQuery = params.Encode()
		}
		if tc.secret != "" {
			req.Header.Add("signed", hmacSign(tc.secret, params.Encode()))
		}

		resp := httptest.NewRecorder()
		s.r.ServeHTTP(resp, req)

		if tc.assert == nil {
			if tc.expectedSuccess {
				tc.assert = httputil.ExpectSuccess
			} else {
				tc.assert = httputil.ExpectFailure
			}
		}
		tc.assert(t, resp)
	}
}

func nowNonce() string {
	return strconv.FormatUint(common.GetTimepoint(), 10)
}

func TestHTTPServerReadEndpoints(t *testing.T) {
	core := &testCore{state: common.NonceState{Known: true, Nonce: 6}}
	s := newTestServer(core, false)

	runTestCases(t, s, []testCase{
		{
			msg:      "getting nonce state",
			endpoint: "/nonce",
			method:   http.MethodGet,
			assert: func(t *testing.T, resp *httptest.ResponseRecorder) {
				decoded := struct {
					Success bool
					Data    common.NonceState
				}{}
				if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
					t.Fatal(err)
				}
				if !decoded.Success || decoded.Data != core.state {
					t.Errorf("wrong nonce state, expected: %s, got: %s", core.state, decoded.Data)
				}
			},
		},
		{
			msg:      "getting signer address",
			endpoint: "/address",
			method:   http.MethodGet,
			assert: func(t *testing.T, resp *httptest.ResponseRecorder) {
				decoded := struct {
					Success bool
					Data    string
				}{}
				if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
					t.Fatal(err)
				}
				if decoded.Data != testAddress.Hex() {
					t.Errorf("wrong address, expected: %s, got: %s", testAddress.Hex(), decoded.Data)
				}
			},
		},
		{
			msg:             "getting activities",
			endpoint:        "/activities",
			method:          http.MethodGet,
			params:          url.Values{"fromTime": {"1000"}, "toTime": {"2000"}},
			expectedSuccess: true,
		},
		{
			msg:             "getting pending activities",
			endpoint:        "/immediate-pending-activities",
			method:          http.MethodGet,
			expectedSuccess: true,
		},
	})

	if core.from != 1000*1000000 || core.to != 2000*1000000 {
		t.Errorf("activities time range must be converted to nanoseconds, got: %d - %d", core.from, core.to)
	}
}

func TestHTTPServerActivitiesRange(t *testing.T) {
	core := &testCore{}
	s := newTestServer(core, false)

	runTestCases(t, s, []testCase{
		{
			msg:             "activities without fromTime",
			endpoint:        "/activities",
			method:          http.MethodGet,
			params:          url.Values{"toTime": {"200000000"}},
			expectedSuccess: true,
		},
	})
	if core.from != (200000000-MAX_ACTIVITY_RANGE)*1000000 || core.to != 200000000*1000000 {
		t.Errorf("missing fromTime must default to one day before toTime, got: %d - %d", core.from, core.to)
	}

	core.from, core.to = 0, 0
	runTestCases(t, s, []testCase{
		{
			msg:             "activities with fromTime overflowing nanoseconds",
			endpoint:        "/activities",
			method:          http.MethodGet,
			params:          url.Values{"fromTime": {strconv.FormatUint(MAX_ACTIVITY_TIME+1, 10)}},
			expectedSuccess: false,
		},
		{
			msg:             "activities with toTime overflowing nanoseconds",
			endpoint:        "/activities",
			method:          http.MethodGet,
			params:          url.Values{"fromTime": {"1000"}, "toTime": {strconv.FormatUint(MAX_ACTIVITY_TIME+1, 10)}},
			expectedSuccess: false,
		},
	})
	if core.from != 0 || core.to != 0 {
		t.Errorf("overflowing range must not reach the core, got: %d - %d", core.from, core.to)
	}
}

func TestHTTPServerTransferAuthentication(t *testing.T) {
	core := &testCore{outcome: common.TransferOutcome{Kind: common.OutcomeConfirmed, MinedNonce: 7}}
	s := newTestServer(core, true)

	runTestCases(t, s, []testCase{
		{
			msg:             "transfer without signature",
			endpoint:        "/transfer",
			method:          http.MethodPost,
			params:          url.Values{"nonce": {nowNonce()}},
			expectedSuccess: false,
		},
		{
			msg:             "transfer with stale nonce",
			endpoint:        "/transfer",
			method:          http.MethodPost,
			params:          url.Values{"nonce": {"1000"}},
			secret:          "transfer-secret",
			expectedSuccess: false,
		},
		{
			msg:             "transfer with readonly signature",
			endpoint:        "/transfer",
			method:          http.MethodPost,
			params:          url.Values{"nonce": {nowNonce()}},
			secret:          "readonly-secret",
			expectedSuccess: false,
		},
		{
			msg:             "activities with readonly signature",
			endpoint:        "/activities",
			method:          http.MethodGet,
			params:          url.Values{"nonce": {nowNonce()}},
			secret:          "readonly-secret",
			expectedSuccess: true,
		},
		{
			msg:             "transfer with transfer signature",
			endpoint:        "/transfer",
			method:          http.MethodPost,
			params:          url.Values{"nonce": {nowNonce()}},
			secret:          "transfer-secret",
			expectedSuccess: true,
		},
	})

	if core.transfers != 1 {
		t.Errorf("expected exactly one authenticated transfer, got: %d", core.transfers)
	}
}

func TestHTTPServerTransferFailure(t *testing.T) {
	core := &testCore{outcome: common.TransferOutcome{
		Kind: common.OutcomeNotFound,
		Err:  errors.New("transaction not found after broadcast"),
	}}
	s := newTestServer(core, false)

	runTestCases(t, s, []testCase{
		{
			msg:      "transfer ending not found",
			endpoint: "/transfer",
			method:   http.MethodPost,
			assert: func(t *testing.T, resp *httptest.ResponseRecorder) {
				decoded := struct {
					Success bool
					Outcome string
					Reason  string
				}{}
				if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
					t.Fatal(err)
				}
				if decoded.Success || decoded.Outcome != string(common.OutcomeNotFound) {
					t.Errorf("expected a not found failure, got: %+v", decoded)
				}
			},
		},
	})
}

func TestIsIntime(t *testing.T) {
	if !IsIntime(nowNonce()) {
		t.Errorf("current time must be in time")
	}
	if IsIntime(strconv.FormatUint(common.GetTimepoint()-60000, 10)) {
		t.Errorf("a minute old nonce must not be in time")
	}
	if IsIntime("abc") {
		t.Errorf("malformed nonce must not be in time")
	}
}
