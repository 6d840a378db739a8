package httputil

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// NewClient builds the HTTP client every API call goes through. The timeout
// is fixed and covers the whole round trip; it is not user-configurable per
// request.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
