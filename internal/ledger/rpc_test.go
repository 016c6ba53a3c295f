package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// rpcServer serves canned JSON-RPC responses keyed by method.
func rpcServer(t *testing.T, handlers map[string]func(params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		handler, ok := handlers[req.Method]
		if !ok {
			t.Errorf("unexpected method %q", req.Method)
			return
		}
		result, rpcErr := handler(req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": 1}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestRPCFetchRaw(t *testing.T) {
	stored := []byte{0xca, 0xfe}
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"getAccountInfo": func(params []json.RawMessage) (any, *rpcError) {
			var addr string
			_ = json.Unmarshal(params[0], &addr)
			if addr == ZeroAddress.String() {
				return map[string]any{"value": nil}, nil
			}
			return map[string]any{"value": map[string]any{
				"data": []string{base64.StdEncoding.EncodeToString(stored), "base64"},
			}}, nil
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	ctx := context.Background()

	data, found, err := client.FetchRaw(ctx, Address{1})
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(data) != 2 || data[0] != 0xca {
		t.Errorf("data = %v", data)
	}

	_, found, err = client.FetchRaw(ctx, ZeroAddress)
	if err != nil {
		t.Fatalf("absent fetch errored: %v", err)
	}
	if found {
		t.Error("absent account reported found")
	}
}

func TestRPCSubmitMapsAuthorityErrors(t *testing.T) {
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"sendTransaction": func([]json.RawMessage) (any, *rpcError) {
			return nil, &rpcError{Code: rpcCodeUnauthorized, Message: "signer is not the authority"}
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	kp, _ := GenerateKeypair()

	_, err := client.Submit(context.Background(), kp.Sign([]byte{1}))
	if !errors.Is(err, ErrAuthorityMismatch) {
		t.Fatalf("err = %v, want ErrAuthorityMismatch", err)
	}
}

func TestRPCAwaitConfirmation(t *testing.T) {
	calls := 0
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"getSignatureStatuses": func([]json.RawMessage) (any, *rpcError) {
			calls++
			if calls < 3 {
				return map[string]any{"value": []any{nil}}, nil
			}
			return map[string]any{"value": []any{map[string]any{
				"confirmationStatus": "confirmed",
			}}}, nil
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	client.PollInterval = time.Millisecond
	client.ConfirmTimeout = time.Second

	if err := client.AwaitConfirmation(context.Background(), "tx-1"); err != nil {
		t.Fatalf("AwaitConfirmation: %v", err)
	}
	if calls < 3 {
		t.Errorf("polled %d times, want at least 3", calls)
	}
}

func TestRPCAwaitConfirmationTimeout(t *testing.T) {
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"getSignatureStatuses": func([]json.RawMessage) (any, *rpcError) {
			return map[string]any{"value": []any{nil}}, nil
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	client.PollInterval = time.Millisecond
	client.ConfirmTimeout = 10 * time.Millisecond

	err := client.AwaitConfirmation(context.Background(), "tx-1")
	if !errors.Is(err, ErrConfirmationTimeout) {
		t.Fatalf("err = %v, want ErrConfirmationTimeout", err)
	}
}

func TestRPCAwaitConfirmationLedgerFailure(t *testing.T) {
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"getSignatureStatuses": func([]json.RawMessage) (any, *rpcError) {
			return map[string]any{"value": []any{map[string]any{
				"confirmationStatus": "confirmed",
				"err":                map[string]any{"InstructionError": []any{0, "Custom"}},
			}}}, nil
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	client.PollInterval = time.Millisecond

	err := client.AwaitConfirmation(context.Background(), "tx-1")
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("err = %v, want ErrTransactionFailed", err)
	}
}

func TestRPCWireFraming(t *testing.T) {
	var captured string
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"sendTransaction": func(params []json.RawMessage) (any, *rpcError) {
			_ = json.Unmarshal(params[0], &captured)
			return "tx-abc", nil
		},
	})
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	kp, _ := GenerateKeypair()
	payload := []byte{9, 9, 9}

	txID, err := client.Submit(context.Background(), kp.Sign(payload))
	if err != nil {
		t.Fatal(err)
	}
	if txID != "tx-abc" {
		t.Errorf("txID = %q", txID)
	}

	wire, err := base64.StdEncoding.DecodeString(captured)
	if err != nil {
		t.Fatal(err)
	}
	if len(wire) != 32+64+len(payload) {
		t.Fatalf("wire length = %d", len(wire))
	}
	signer := kp.Address()
	if fmt.Sprintf("%x", wire[:32]) != fmt.Sprintf("%x", signer[:]) {
		t.Error("wire does not start with the signer address")
	}
}
