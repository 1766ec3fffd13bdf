// Package hrflow is a client for the HrFlow.ai REST API. One Client is built
// with credentials at startup and exposes one method per remote operation.
package hrflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/matchbot/pkg/logger"
	"github.com/okian/matchbot/pkg/metrics"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.hrflow.ai/v1"

	defaultTimeout = 30 * time.Second
	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10

	headerAPIKey    = "X-API-KEY"
	headerUserEmail = "X-USER-EMAIL"
)

// Client talks to HrFlow with a fixed pair of credentials.
type Client struct {
	baseURL   string
	apiKey    string
	userEmail string
	http      *http.Client
	limiter   *rate.Limiter
	log       logger.Logger
}

// New creates a Client. Credentials are not validated here; callers that
// serve requests without them check configuration first.
func New(apiKey, userEmail string, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userEmail: userEmail,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Inf, 0),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// envelope is the common response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get issues a GET and decodes envelope.data into out.
func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("hrflow %s: build request: %w", op, err)
	}
	return c.do(req, op, out)
}

// postJSON issues a POST with a JSON body and decodes envelope.data into out.
func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("hrflow %s: marshal: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hrflow %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	raw, status, err := c.send(req, op)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &APIError{Op: op, Status: status, Body: clip(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, op, err)
	}
	if env.Code >= 400 {
		return &APIError{Op: op, Status: env.Code, Body: env.Message}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: %s", ErrEmptyResult, op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, op, err)
	}
	return nil
}

// send waits for the limiter, attaches credentials and reads the whole body.
func (c *Client) send(req *http.Request, op string) ([]byte, int, error) {
	ctx := req.Context()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("hrflow %s: rate limit: %w", op, err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerUserEmail, c.userEmail)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamCall("hrflow", op, 0, time.Since(start))
		return nil, 0, fmt.Errorf("hrflow %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	metrics.RecordUpstreamCall("hrflow", op, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("hrflow %s: read body: %w", op, err)
	}
	c.log.Debug(ctx, "hrflow call",
		logger.String("op", op),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", time.Since(start)),
	)
	return raw, resp.StatusCode, nil
}

func clip(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return strings.TrimSpace(string(b))
}

// jsonParam encodes v as a JSON query parameter value.
func jsonParam(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
