package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/modalyze/modalyze/internal/config"
	"github.com/modalyze/modalyze/internal/metrics"
)

const generateContentPath = "%s/v1beta/models/%s:generateContent"

// Client issues the single outbound call to the Gemini generateContent
// endpoint. It holds no mutable state and is safe for concurrent use.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Response is the raw upstream outcome before classification: the body plus
// the HTTP status it arrived with.
type Response struct {
	StatusCode int
	Body       []byte
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []Part `json:"parts"`
}

// errorBody is the error shape Gemini returns alongside non-2xx statuses.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient builds the upstream client from process configuration. The
// outbound proxy is applied only in a development context; in any other
// environment a configured proxy is ignored.
func NewClient(cfg config.Config) *Client {
	transport := &http.Transport{}
	if cfg.IsDevelopment() && cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
			infoLog("outbound proxy enabled (dev only): %s", cfg.ProxyURL)
		} else {
			infoLog("ignoring malformed proxy URL: %v", err)
		}
	}

	keyPreview := cfg.GeminiAPIKey
	if len(keyPreview) > 10 {
		keyPreview = keyPreview[:10] + "..."
	}
	infoLog("upstream client: model=%s key=%s", cfg.GeminiModel, keyPreview)

	return &Client{
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		baseURL: cfg.GeminiBaseURL,
		httpClient: &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: transport,
		},
	}
}

// Generate sends one generateContent request carrying the given parts and
// returns the raw outcome. A non-2xx status is not an error here;
// classification happens at the gateway layer. An error means the call
// itself failed (marshalling, DNS, connection, read).
func (c *Client) Generate(ctx context.Context, parts []Part) (*Response, error) {
	body, err := json.Marshal(generateRequest{Contents: []requestContent{{Parts: parts}}})
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	endpoint := fmt.Sprintf(generateContentPath, c.baseURL, c.model) + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	debugLog("upstream request: model=%s parts=%d", c.model, len(parts))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamErrorsTotal.WithLabelValues("api").Inc()
		debugLog("upstream error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// ErrorMessage extracts the upstream error message from a non-2xx body,
// falling back to a generic description when the body is not the expected
// error shape.
func ErrorMessage(body []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return fmt.Sprintf("upstream returned status %d", status)
}
