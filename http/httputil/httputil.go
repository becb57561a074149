// Package httputil contains helpers for testing the HTTP API.
package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type successResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) successResponse {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("wrong return code, expected: %d, got: %d", http.StatusOK, resp.Code)
	}
	decoded := successResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	return decoded
}

// ExpectSuccess asserts that the response is a successful JSON reply.
func ExpectSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	decoded := decode(t, resp)
	if !decoded.Success {
		t.Errorf("wrong success status, expected: %t, got: %t, reason: %s", true, decoded.Success, decoded.Reason)
	}
}

// ExpectFailure asserts that the response is a failed JSON reply.
func ExpectFailure(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	decoded := decode(t, resp)
	if decoded.Success {
		t.Errorf("wrong success status, expected: %t, got: %t", false, decoded.Success)
	}
}
