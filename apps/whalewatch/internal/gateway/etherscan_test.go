package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newEtherscanServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *EtherscanGateway {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return NewEtherscanGateway(server.URL, 1, "test-key", zaptest.NewLogger(t))
}

func TestEtherscanBlockNumber(t *testing.T) {
	gw := newEtherscanServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "proxy" || q.Get("action") != "eth_blockNumber" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("chainid") != "1" || q.Get("apikey") != "test-key" {
			t.Errorf("missing chainid or apikey: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":83,"result":"0x1312d00"}`)
	})

	got, err := gw.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber failed: %v", err)
	}
	if got != 20000000 {
		t.Errorf("BlockNumber = %d, want 20000000", got)
	}
}

func TestEtherscanBlockTransactions(t *testing.T) {
	gw := newEtherscanServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "eth_getBlockByNumber" || q.Get("tag") != "0x1312d01" || q.Get("boolean") != "true" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{
			"number":"0x1312d01",
			"hash":"0xblock",
			"transactions":[
				{"hash":"0xaa","blockNumber":"0x1312d01","from":"0xAAAA","to":"0xBBBB","value":"0x56bc75e2d63100000"},
				{"hash":"0xbb","blockNumber":"0x1312d01","from":"0xCCCC","to":null,"value":"0x0"},
				{"hash":"0xcc","blockNumber":"0x1312d01","from":"0xDDDD","to":"0xEEEE","value":"garbage"}
			]}}`)
	})

	txs, err := gw.BlockTransactions(context.Background(), 20000001)
	if err != nil {
		t.Fatalf("BlockTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	first := txs[0]
	if first.Hash != "0xaa" || first.From != "0xaaaa" || first.To != "0xbbbb" || first.BlockNumber != 20000001 {
		t.Errorf("unexpected transaction: %+v", first)
	}
	if first.Value.String() != "100000000000000000000" {
		t.Errorf("value = %s", first.Value)
	}

	if txs[1].To != "" {
		t.Errorf("contract creation should have empty to, got %q", txs[1].To)
	}
}

func TestEtherscanErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "RateLimited",
			status:  http.StatusOK,
			body:    `{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`,
			wantErr: ErrRateLimited,
		},
		{
			name:    "InvalidKey",
			status:  http.StatusOK,
			body:    `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`,
			wantErr: ErrRejected,
		},
		{
			name:   "RPCError",
			status: http.StatusOK,
			body:   `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`,
		},
		{
			name:   "HTTPError",
			status: http.StatusBadGateway,
			body:   `upstream unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newEtherscanServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := gw.BlockNumber(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && (errors.Is(err, ErrRateLimited) || errors.Is(err, ErrRejected)) {
				t.Errorf("unexpected classification: %v", err)
			}
		})
	}
}

func TestEtherscanBlockNotFound(t *testing.T) {
	gw := newEtherscanServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":null}`)
	})

	_, err := gw.BlockTransactions(context.Background(), 1)
	if !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestEtherscanSetAPIKey(t *testing.T) {
	var seen string
	gw := newEtherscanServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("apikey")
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	})

	gw.SetAPIKey("rotated")
	if _, err := gw.BlockNumber(context.Background()); err != nil {
		t.Fatalf("BlockNumber failed: %v", err)
	}
	if seen != "rotated" {
		t.Errorf("apikey = %q, want rotated", seen)
	}
}
