package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"loyaltyledger/cmd/internal/passphrase"
)

// rpcClient posts JSON-RPC requests to a loyaltyd node.
type rpcClient struct {
	endpoint string
	token    *passphrase.Source
	http     *http.Client
}

func newRPCClient(endpoint string) *rpcClient {
	return &rpcClient{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		token:    passphrase.NewSource("LOYALTY_RPC_TOKEN", "RPC bearer token"),
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("error from node (%d): %s: %s", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("error from node (%d): %s", e.Code, e.Message)
}

// call invokes method with a single positional parameter. Write methods send
// the bearer token.
func (c *rpcClient) call(method string, param interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if param != nil {
		payload["params"] = []interface{}{param}
	} else {
		payload["params"] = []interface{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.endpoint+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requireAuth {
		token, err := c.token.Get()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response from node (HTTP %d)", resp.StatusCode)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://127.0.0.1:8545"
}
