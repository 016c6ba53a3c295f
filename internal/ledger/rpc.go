package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RPC error code the ledger returns when the signer does not hold the
// authority a mutation requires.
const rpcCodeUnauthorized = -32040

// RPCClient talks JSON-RPC 2.0 to a ledger node over HTTP.
type RPCClient struct {
	URL        string
	HTTPClient *http.Client

	// PollInterval is the delay between confirmation polls.
	PollInterval time.Duration
	// ConfirmTimeout bounds the total wait in AwaitConfirmation.
	ConfirmTimeout time.Duration
}

// NewRPCClient creates a client with default polling behavior.
func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		URL:            url,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		PollInterval:   500 * time.Millisecond,
		ConfirmTimeout: 60 * time.Second,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc %s: unexpected status %s", method, resp.Status)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("rpc %s: decoding response: %w", method, err)
	}
	if rr.Error != nil {
		if rr.Error.Code == rpcCodeUnauthorized {
			return fmt.Errorf("rpc %s: %s: %w", method, rr.Error.Message, ErrAuthorityMismatch)
		}
		return fmt.Errorf("rpc %s: remote error %d: %s", method, rr.Error.Code, rr.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(rr.Result, result); err != nil {
			return fmt.Errorf("rpc %s: decoding result: %w", method, err)
		}
	}
	return nil
}

// FetchRaw implements Client. Absence of an account is reported via
// found=false, never as an error.
func (c *RPCClient) FetchRaw(ctx context.Context, addr Address) ([]byte, bool, error) {
	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []any{addr.String(), map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, false, err
	}
	if result.Value == nil {
		return nil, false, nil
	}
	if len(result.Value.Data) == 0 {
		return nil, true, nil
	}
	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s: malformed account data: %w", addr, err)
	}
	return data, true, nil
}

// Submit implements Client.
func (c *RPCClient) Submit(ctx context.Context, action SignedAction) (string, error) {
	wire := make([]byte, 0, 32+64+len(action.Payload))
	wire = append(wire, action.Signer[:]...)
	wire = append(wire, action.Signature...)
	wire = append(wire, action.Payload...)

	var txID string
	if err := c.call(ctx, "sendTransaction", []any{base64.StdEncoding.EncodeToString(wire)}, &txID); err != nil {
		return "", err
	}
	return txID, nil
}

// AwaitConfirmation implements Client. It polls getSignatureStatuses
// until the transaction is confirmed, the ledger reports an error, or
// ConfirmTimeout elapses. A timeout does not mean the mutation was
// lost; callers re-probe to learn the true outcome.
func (c *RPCClient) AwaitConfirmation(ctx context.Context, txID string) error {
	deadline := time.Now().Add(c.ConfirmTimeout)
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		var result struct {
			Value []*struct {
				ConfirmationStatus string          `json:"confirmationStatus"`
				Err                json.RawMessage `json:"err"`
			} `json:"value"`
		}
		if err := c.call(ctx, "getSignatureStatuses", []any{[]string{txID}}, &result); err != nil {
			return err
		}
		if len(result.Value) > 0 && result.Value[0] != nil {
			status := result.Value[0]
			if len(status.Err) > 0 && string(status.Err) != "null" {
				return fmt.Errorf("transaction %s: %w: %s", txID, ErrTransactionFailed, status.Err)
			}
			switch status.ConfirmationStatus {
			case "confirmed", "finalized":
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s: %w", txID, ErrConfirmationTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
