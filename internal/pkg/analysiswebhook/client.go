package analysiswebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qs3c/leadcrm_go_server/config"
)

// Payload 投递给外部分析服务的请求体。字段名是和对方约定好的，
// 不要随模型字段重命名。
type Payload struct {
	URL              string `json:"url"`
	Name             string `json:"name"`
	RecordingID      int64  `json:"recording_id"`
	AnalysisID       int64  `json:"analysis_id"`
	UserID           int64  `json:"user_id"`
	CallID           int64  `json:"call_id"`
	Timestamp        string `json:"timestamp"`
	Source           string `json:"source"`
	URLValidated     bool   `json:"url_validated"`
	ValidationMethod string `json:"validation_method"`
}

type Client struct {
	endpoint   string
	source     string
	httpClient *http.Client
}

func NewClient(cfg *config.AnalysisWebhookConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.URL,
		source:   cfg.Source,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateURL 投递前探测录音地址是否可达。HEAD 被对端拒绝时降级
// 为带 Range 的 GET，两种都失败不拦截投递，只是标记未校验。
// 返回是否可达和所用探测方式。
func (c *Client) ValidateURL(ctx context.Context, url string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, "none"
	}
	resp, err := c.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < 400 {
			return true, "head"
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, "none"
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = c.httpClient.Do(req)
	if err != nil {
		return false, "none"
	}
	resp.Body.Close()
	if resp.StatusCode < 400 {
		return true, "range_get"
	}
	return false, "none"
}

// Dispatch 把录音投递给外部分析服务。投出去就算完成，
// 结果由对方异步回调写回，这里不等。
func (c *Client) Dispatch(ctx context.Context, payload *Payload) error {
	if payload.Timestamp == "" {
		payload.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if payload.Source == "" {
		payload.Source = c.source
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to dispatch webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook rejected with status %d", resp.StatusCode)
	}
	return nil
}
