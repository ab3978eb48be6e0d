package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate HTTP服务配置校验
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	if h.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	// 用net包解析地址，验证格式合法性（":port" 或 "ip:port"）
	if _, err := net.ResolveTCPAddr("tcp", h.Addr); err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", h.Addr, err)
	}
	return nil
}

// Validate 至少启用一个 writer，否则采集到的样本没有去处
// http writer 启用时必须配置 url
func (w *WritersConfig) Validate() error {
	if err := valid.Struct(w); err != nil {
		return err
	}
	if !w.Prometheus.Enable && !w.Log.Enable && !w.HTTP.Enable {
		return errors.New("at least one writer must be enabled (prometheus/log/http)")
	}
	if w.HTTP.Enable && w.HTTP.URL == "" {
		return errors.New("writers.http.url is required when the http writer is enabled")
	}
	return nil
}
