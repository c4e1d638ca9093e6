package sellus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Result is the discriminated outcome of one remote call. The gateway never
// returns transport or HTTP-level failures as Go errors: callers branch on
// Success and log the outcome through the sync ledger.
type Result struct {
	Success    bool
	Status     int
	Data       json.RawMessage
	Error      string
	DurationMs int64
}

// Caller is the single chokepoint every component uses for outbound Sellus
// traffic. Workflows depend on this seam, not on the concrete gateway.
type Caller interface {
	Call(ctx context.Context, method, path string, body interface{}) Result
}

// Gateway is the HTTP implementation of Caller against the Sellus REST API
type Gateway struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewGateway creates a gateway for the given base URL and bearer credential
func NewGateway(baseURL, token string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    newHTTPClient(),
	}
}

// newHTTPClient builds the tuned client used for all Sellus traffic
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext:     dialer.DialContext,
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

// methodCarriesBody reports whether the method conventionally carries a
// request body
func methodCarriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Call performs one request against Sellus and returns the uniform result.
// Duration is measured for every outcome, including network failures.
func (g *Gateway) Call(ctx context.Context, method, path string, body interface{}) Result {
	start := time.Now()

	fail := func(format string, args ...interface{}) Result {
		return Result{
			Success:    false,
			Error:      fmt.Sprintf(format, args...),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	var reader io.Reader
	if body != nil && methodCarriesBody(method) {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fail("failed to build request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fail("sellus request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	duration := time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("sellus api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if resp.StatusCode == http.StatusUnauthorized {
			if hint := resp.Header.Get("WWW-Authenticate"); hint != "" {
				errMsg = fmt.Sprintf("%s (auth scheme: %s)", errMsg, hint)
			}
		}
		return Result{
			Success:    false,
			Status:     resp.StatusCode,
			Error:      errMsg,
			DurationMs: duration,
		}
	}

	return Result{
		Success:    true,
		Status:     resp.StatusCode,
		Data:       json.RawMessage(respBody),
		DurationMs: duration,
	}
}

// isMethodNotAllowed reports whether a failed result looks like the endpoint
// rejecting the verb rather than the payload. Some Sellus deployments only
// accept PUT for item updates.
func isMethodNotAllowed(res Result) bool {
	return res.Status == http.StatusMethodNotAllowed || res.Status == http.StatusNotImplemented
}
