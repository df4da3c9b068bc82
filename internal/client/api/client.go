// Package api is the HTTP client for the game server.
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

	"chessai/internal/client/display"
	"chessai/internal/core"

	"go.uber.org/zap"
)

// Error is returned for responses with status >= 400.
type Error struct {
	Status  int
	Message string
	Code    string
	Details string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Detail is the server's own error message, or the status text.
func (e *Error) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	// Trace receives a coloured request/response log when non-nil.
	Trace  io.Writer
	logger *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) tracef(format string, args ...any) {
	if c.Trace != nil {
		fmt.Fprintf(c.Trace, format, args...)
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	// The server rejects POSTs with other content types.
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Verbose {
		c.tracef("%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
		if bodyStr != "" {
			c.tracef("%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		c.tracef("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			c.tracef("%s%s%s\n", display.Cyan, strings.TrimSpace(string(respBody)), display.Reset)
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
			apiErr.Details = errResp.Details
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}

	return nil
}

// API Methods

func (c *Client) Health(ctx context.Context) (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) State(ctx context.Context) (*core.StateResponse, error) {
	var resp core.StateResponse
	err := c.doRequest(ctx, http.MethodGet, "/state", nil, &resp)
	return &resp, err
}

func (c *Client) SubmitMove(ctx context.Context, code string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/move", &core.MoveRequest{Move: code}, &resp)
	return &resp, err
}

func (c *Client) SetColor(ctx context.Context, color core.Color) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/set_color", &core.ColorRequest{Color: color.String()}, &resp)
	return &resp, err
}

func (c *Client) SetDifficulty(ctx context.Context, d core.Difficulty) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/set_difficulty", &core.DifficultyRequest{Difficulty: string(d)}, &resp)
	return &resp, err
}

// NewGame resets the server board.
func (c *Client) NewGame(ctx context.Context) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/reset", nil, &resp)
	return &resp, err
}

func (c *Client) Takeback(ctx context.Context) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/takeback", nil, &resp)
	return &resp, err
}
