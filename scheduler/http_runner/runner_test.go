package http_runner

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/karangoraniya/subscription-icp/common"
)

func TestHttpRunner(t *testing.T) {
	runner, err := NewHttpRunner()
	if err != nil {
		t.Fatal(err)
	}
	if err = runner.Start(); err != nil {
		t.Fatal(err)
	}
	defer runner.Stop()

	now := common.GetTimepoint()
	got := make(chan time.Time, 1)
	go func() {
		got <- <-runner.GetTransferTicker()
	}()

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/ttick?timestamp=%d", runner.Port(), now))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("invalid HTTP return code: %d", resp.StatusCode)
	}

	select {
	case ts := <-got:
		if !ts.Equal(common.TimepointToTime(now)) {
			t.Errorf("wrong timestamp received, expected: %s, got: %s", common.TimepointToTime(now), ts)
		}
	case <-time.After(time.Second):
		t.Fatal("transfer ticker did not tick")
	}
}

func TestHttpRunnerTickWithoutReceiver(t *testing.T) {
	runner, err := NewHttpRunner()
	if err != nil {
		t.Fatal(err)
	}
	runner.tickTimeout = 100 * time.Millisecond
	if err = runner.Start(); err != nil {
		t.Fatal(err)
	}
	defer runner.Stop()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/ttick", runner.Port()))
	if err != nil {
		t.Fatalf("tick must not hang when nothing reads the ticker: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected %d when nothing reads the ticker, got: %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestHttpRunnerStartTwice(t *testing.T) {
	runner, err := NewHttpRunner()
	if err != nil {
		t.Fatal(err)
	}
	if err = runner.Start(); err != nil {
		t.Fatal(err)
	}
	if err = runner.Start(); err == nil {
		t.Errorf("expected an error when starting a started runner")
	}
	if err = runner.Stop(); err != nil {
		t.Fatal(err)
	}
	if err = runner.Stop(); err == nil {
		t.Errorf("expected an error when stopping a stopped runner")
	}
}
