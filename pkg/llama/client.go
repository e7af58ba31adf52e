package llama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a whole completion call, connect through body read.
const DefaultTimeout = 60 * time.Second

// Client issues non-streaming completion calls to a llama-server instance.
// It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client posting to baseURL+completionPath. A non-positive
// timeout falls back to DefaultTimeout.
func NewClient(baseURL, completionPath string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:    strings.TrimRight(baseURL, "/") + completionPath,
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the completion endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Complete sends req and decodes the reply. Any error is an *Error.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req.Stream = false

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, upstreamErr(fmt.Errorf("marshal request: %w", err))
	}

	c.logger.Debug("sending completion request",
		zap.String("url", c.url),
		zap.Int("body_size", len(reqBody)),
		zap.Int("n_predict", req.NPredict),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, upstreamErr(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classify(fmt.Errorf("do request: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, upstreamErr(fmt.Errorf("upstream returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))))
	}

	var resp CompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal response: %w", err))
	}

	fields := []zap.Field{
		zap.String("model", resp.Model),
		zap.Int("tokens_predicted", resp.TokensPredicted),
		zap.Int("tokens_evaluated", resp.TokensEvaluated),
		zap.String("stopping_word", resp.StoppingWord),
		zap.Bool("truncated", resp.Truncated),
		zap.Duration("duration", time.Since(startTime)),
	}
	if resp.Timings != nil {
		fields = append(fields,
			zap.Float64("prompt_ms", resp.Timings.PromptMS),
			zap.Float64("predicted_ms", resp.Timings.PredictedMS),
		)
	}
	c.logger.Debug("received completion", fields...)

	return &resp, nil
}
