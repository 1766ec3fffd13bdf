package simulate

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Twilio signs webhooks with HMAC-SHA1
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/matchbot/pkg/logger"
)

// Submission outcomes.
const (
	resultReplied  = "replied"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// HTTPClient posts webhook forms, signing them when a token is configured.
type HTTPClient struct {
	client    *http.Client
	authToken string
	signURL   string
}

func newHTTPClient(config *Config) *HTTPClient {
	signURL := config.PublicURL
	if signURL == "" {
		signURL = config.BaseURL + config.WebhookPath
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: config.Timeout},
		authToken: config.AuthToken,
		signURL:   signURL,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostForm posts form to target with a Twilio signature header.
func (c *HTTPClient) PostForm(ctx context.Context, target string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authToken != "" {
		req.Header.Set("X-Twilio-Signature", Sign(c.authToken, c.signURL, form))
	}
	return c.client.Do(req)
}

// Sign computes the X-Twilio-Signature value for a form post to fullURL.
func Sign(authToken, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// formFor renders msg the way Twilio posts it.
func formFor(msg Message) url.Values {
	form := url.Values{
		"MessageSid": {msg.SID},
		"From":       {msg.From},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {msg.Body},
		"NumMedia":   {"0"},
	}
	if msg.MediaURL != "" {
		form.Set("NumMedia", strconv.Itoa(1))
		form.Set("MediaUrl0", msg.MediaURL)
		form.Set("MediaContentType0", msg.MediaType)
	}
	return form
}

// submitConversations replays conversations concurrently. Messages of one
// sender stay in order on a single worker.
func submitConversations(ctx context.Context, config *Config, convs []Conversation, stats *Stats) error {
	log := logger.Get().Named("simulate")
	log.Info(ctx, "submitting conversations",
		logger.Int("conversations", len(convs)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config)
	target := config.BaseURL + config.WebhookPath

	var sent, replied, rejected, failed, redelivered int64

	convChan := make(chan Conversation, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for conv := range convChan {
				for _, msg := range conv.Messages {
					if ctx.Err() != nil {
						return
					}
					result := submitMessage(ctx, client, target, msg)
					atomic.AddInt64(&sent, 1)
					if msg.Redelivery {
						atomic.AddInt64(&redelivered, 1)
					}
					switch result {
					case resultReplied:
						atomic.AddInt64(&replied, 1)
					case resultRejected:
						atomic.AddInt64(&rejected, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
					if config.Verbose {
						log.Debug(ctx, "message submitted",
							logger.String("sid", msg.SID),
							logger.String("from", msg.From),
							logger.String("result", result))
					}
				}
			}
		}()
	}

	go func() {
		defer close(convChan)
		for _, conv := range convs {
			select {
			case <-ctx.Done():
				return
			case convChan <- conv:
			}
		}
	}()

	wg.Wait()

	stats.MessagesSent = int(atomic.LoadInt64(&sent))
	stats.Replied = int(atomic.LoadInt64(&replied))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Redeliveries = int(atomic.LoadInt64(&redelivered))

	log.Info(ctx, "submission completed",
		logger.Int("sent", stats.MessagesSent),
		logger.Int("replied", stats.Replied),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	return nil
}

// submitMessage posts one message and classifies the answer.
func submitMessage(ctx context.Context, client *HTTPClient, target string, msg Message) string {
	resp, err := client.PostForm(ctx, target, formFor(msg))
	if err != nil {
		return resultFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resultFailed
	}

	switch {
	case resp.StatusCode == http.StatusOK && strings.Contains(string(body), "<Response>"):
		return resultReplied
	case resp.StatusCode == http.StatusForbidden:
		return resultRejected
	default:
		return resultFailed
	}
}

// fetchServerRuns reads the run counter from /stats.
func fetchServerRuns(ctx context.Context, config *Config) (int, error) {
	resp, err := newHTTPClient(config).Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stats returned status %d", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode stats: %w", err)
	}
	runs, _ := payload["runs"].(float64)
	return int(runs), nil
}

// waitSettle sleeps for d or until ctx is done.
func waitSettle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
