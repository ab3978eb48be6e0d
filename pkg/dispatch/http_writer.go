package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/readfiles-agent/pkg/readfiles"
)

const defaultHTTPTimeout = 5 * time.Second

// httpValue 单个样本的 JSON 形式（一个数据源 "value"）
// NaN/±Inf 无法用 JSON 表示，编码为 null。
type httpValue struct {
	Values         []*float64 `json:"values"`
	DSTypes        []string   `json:"dstypes"`
	DSNames        []string   `json:"dsnames"`
	Time           float64    `json:"time"`
	Interval       float64    `json:"interval"`
	Host           string     `json:"host"`
	Plugin         string     `json:"plugin"`
	PluginInstance string     `json:"plugin_instance"`
	Type           string     `json:"type"`
	TypeInstance   string     `json:"type_instance"`
}

// HTTPWriter 每个样本 POST 一次 JSON 数组到指定 URL，非 2xx 视为失败
type HTTPWriter struct {
	url    string
	client *http.Client
}

var _ Writer = (*HTTPWriter)(nil)

// NewHTTPWriter 创建 writer，timeout <= 0 时使用默认 5s
func NewHTTPWriter(url string, timeout time.Duration) *HTTPWriter {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPWriter{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *HTTPWriter) Name() string { return "http" }

func (w *HTTPWriter) Write(ctx context.Context, s readfiles.Sample) error {
	body, err := json.Marshal([]httpValue{toHTTPValue(s)})
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s: %w", s.Identity, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status for %s: %d", s.Identity, resp.StatusCode)
	}
	return nil
}

func toHTTPValue(s readfiles.Sample) httpValue {
	var ts float64
	if !s.Time.IsZero() {
		ts = float64(s.Time.UnixNano()) / float64(time.Second)
	}
	return httpValue{
		Values:         []*float64{jsonNumber(s.Value)},
		DSTypes:        []string{string(s.Identity.Type)},
		DSNames:        []string{"value"},
		Time:           ts,
		Interval:       s.Interval,
		Host:           s.Host,
		Plugin:         s.Identity.Plugin,
		PluginInstance: s.Identity.PluginInstance,
		Type:           string(s.Identity.Type),
		TypeInstance:   s.Identity.TypeInstance,
	}
}

// jsonNumber 有限值返回其指针，NaN/±Inf 返回 nil
func jsonNumber(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
