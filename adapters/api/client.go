package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client calls a remote frogwalk server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// RemoteSummary is the part of a simulation response a client usually needs
type RemoteSummary struct {
	BatchID     string
	Summary     string
	AtOrigin    int
	Total       int
	Probability float64
	Theoretical float64
	Fingerprint string
}

// RemoteError is a failed response from the server
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Simulate runs a batch remotely
func (c *Client) Simulate(ctx context.Context, req SimulationRequest) (*RemoteSummary, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/simulations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	batchID := gjson.GetBytes(body, "batch_id")
	if !batchID.Exists() {
		return nil, fmt.Errorf("batch_id not found in response")
	}
	return &RemoteSummary{
		BatchID:     batchID.String(),
		Summary:     gjson.GetBytes(body, "summary").String(),
		AtOrigin:    int(gjson.GetBytes(body, "probability.at_origin").Int()),
		Total:       int(gjson.GetBytes(body, "probability.total").Int()),
		Probability: gjson.GetBytes(body, "probability.probability").Float(),
		Theoretical: gjson.GetBytes(body, "theoretical").Float(),
		Fingerprint: gjson.GetBytes(body, "manifest.fingerprint.fingerprint").String(),
	}, nil
}

// Health reports the server's code version
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return "", err
	}
	body, err := c.do(req, http.StatusOK)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "version").String(), nil
}

func (c *Client) do(req *http.Request, want int) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return nil, &RemoteError{
			Status:  resp.StatusCode,
			Code:    gjson.GetBytes(body, "error.code").String(),
			Message: gjson.GetBytes(body, "error.message").String(),
		}
	}
	return body, nil
}
