package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/common"
)

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 400

var successRe = regexp.MustCompile(`(?i)\bsuccess\b`)

// HTTPClient talks to the REST/form API:
//
//	GET  {base}/api/get_sync_queue{suffix}
//	POST {base}/api/save_{table}{suffix}
//	POST {base}/api/truncate_all{suffix}
type HTTPClient struct {
	baseURL string
	suffix  string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL. An empty baseURL yields a client
// whose calls fail with ErrNotConfigured.
func NewHTTPClient(baseURL, suffix string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		suffix:  suffix,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Configured() bool {
	return c.baseURL != ""
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) endpoint(name string) string {
	return c.baseURL + "/api/" + name + c.suffix
}

// Ping issues HEAD on the base URL. Any HTTP response counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) FetchQueue(ctx context.Context) ([]models.CloudEntry, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.endpoint("get_sync_queue"), nil, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRejected, status, clip(body))
	}

	entries, err := models.DecodeQueue(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode queue: %v", ErrRejected, err)
	}
	return entries, nil
}

func (c *HTTPClient) Save(ctx context.Context, r models.SaveRequest) (*SaveResult, error) {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}

	form := url.Values{}
	form.Set("table", string(r.Table))
	form.Set("operation", string(r.Operation))
	form.Set("uuid", r.UUID)
	form.Set("data", string(data))
	if r.DeviceCode != "" {
		form.Set("device_code", r.DeviceCode)
	}

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint("save_"+string(r.Table)), strings.NewReader(form.Encode()), headers)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRejected, status, clip(body))
	}
	if !Accepted(body) {
		return nil, fmt.Errorf("%w: %s", ErrRejected, clip(body))
	}

	var resp saveResponse
	_ = json.Unmarshal(body, &resp)
	return &SaveResult{QueueID: int64(resp.QueueID), Message: resp.Message}, nil
}

type saveResponse struct {
	Message string  `json:"message"`
	QueueID float64 `json:"queue_id"`
}

func (c *HTTPClient) TruncateAll(ctx context.Context, resetToken string) error {
	headers := map[string]string{common.ResetTokenHeaderName: resetToken}
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint("truncate_all"), nil, headers)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, clip(body))
	case status < 200 || status > 299:
		return fmt.Errorf("%w: HTTP %d: %s", ErrRejected, status, clip(body))
	case !Accepted(body):
		return fmt.Errorf("%w: %s", ErrRejected, clip(body))
	}
	return nil
}

// Accepted applies the success rule to a 2xx body: an explicit JSON "ok"
// boolean decides; without one, the body must mention "success".
func Accepted(body []byte) bool {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		if ok, present := obj["ok"].(bool); present {
			return ok
		}
	}
	return successRe.Match(body)
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body io.Reader, headers map[string]string) (int, []byte, error) {
	if !c.Configured() {
		return 0, nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, respBody, nil
}

func clip(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
