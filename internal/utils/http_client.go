package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient 返回带超时的出站客户端。wrap 非空时用于包装底层 Transport（注入请求头、调试日志等）。
func NewHTTPClient(timeout time.Duration, wrap func(http.RoundTripper) http.RoundTripper) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if wrap != nil {
		transport = wrap(transport)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
