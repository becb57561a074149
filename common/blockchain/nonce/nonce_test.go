package nonce

import (
	"context"
	"errors"
	"testing"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/common"
)

type testReader struct {
	count uint64
	err   error
	calls int
}

func (self *testReader) PendingNonceAt(ctx context.Context, account ethereum.Address) (uint64, error) {
	self.calls++
	return self.count, self.err
}

func TestCacheCommitIsStrictlyIncreasing(t *testing.T) {
	cache := NewCache()
	if state := cache.Get(); state.Known {
		t.Fatalf("new cache must be unknown, got: %s", state)
	}

	var tests = []struct {
		commit  uint64
		wantErr bool
		want    uint64
	}{
		{commit: 5, wantErr: false, want: 5},
		{commit: 6, wantErr: false, want: 6},
		{commit: 6, wantErr: true, want: 6},
		{commit: 3, wantErr: true, want: 6},
		{commit: 10, wantErr: false, want: 10},
	}
	for _, tc := range tests {
		err := cache.Commit(tc.commit)
		if tc.wantErr != (err != nil) {
			t.Errorf("commit %d: expected error: %t, got: %v", tc.commit, tc.wantErr, err)
		}
		if err != nil && !errors.Is(err, ErrNonceRegression) {
			t.Errorf("commit %d: expected regression error, got: %v", tc.commit, err)
		}
		state := cache.Get()
		if !state.Known || state.Nonce != tc.want {
			t.Errorf("after commit %d: expected known(%d), got: %s", tc.commit, tc.want, state)
		}
	}
}

func TestCacheCommitZeroFromUnknown(t *testing.T) {
	cache := NewCache()
	if err := cache.Commit(0); err != nil {
		t.Fatal(err)
	}
	if state := cache.Get(); !state.Known || state.Nonce != 0 {
		t.Errorf("expected known(0), got: %s", state)
	}
}

func TestResolverUsesCacheWithoutNetwork(t *testing.T) {
	reader := &testReader{count: 100}
	cache := NewCache()
	if err := cache.Commit(5); err != nil {
		t.Fatal(err)
	}
	resolver := NewResolver(ethereum.Address{}, reader, cache)

	res := resolver.GetNextNonce(context.Background())
	if res.Nonce != 6 || res.Source != common.NonceFromCache {
		t.Errorf("expected nonce 6 from cache, got: %d from %s", res.Nonce, res.Source)
	}
	if reader.calls != 0 {
		t.Errorf("expected no network query, got %d", reader.calls)
	}
}

func TestResolverQueriesNetworkWhenUnknown(t *testing.T) {
	reader := &testReader{count: 5}
	resolver := NewResolver(ethereum.Address{}, reader, NewCache())

	res := resolver.GetNextNonce(context.Background())
	if res.Nonce != 5 || res.Source != common.NonceFromNetwork || res.QueryErr != nil {
		t.Errorf("expected nonce 5 from network, got: %+v", res)
	}
	if reader.calls != 1 {
		t.Errorf("expected 1 network query, got %d", reader.calls)
	}
}

func TestResolverFallsBackToZero(t *testing.T) {
	queryErr := errors.New("rpc unavailable")
	reader := &testReader{count: 9, err: queryErr}
	resolver := NewResolver(ethereum.Address{}, reader, NewCache())

	res := resolver.GetNextNonce(context.Background())
	if res.Nonce != 0 || res.Source != common.NonceFallback {
		t.Errorf("expected fallback nonce 0, got: %d from %s", res.Nonce, res.Source)
	}
	if !errors.Is(res.QueryErr, queryErr) {
		t.Errorf("expected query error to be kept, got: %v", res.QueryErr)
	}
	if state := resolver.State(); state.Known {
		t.Errorf("resolving must not change the cache, got: %s", state)
	}
}
