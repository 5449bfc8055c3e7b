package clients

import (
	"net/http"
	"time"
)

// HTTP talks to the JSON model services (speech-to-text, text emotion).
type HTTP struct {
	c     *http.Client
	token string
}

func NewHTTP() *HTTP { return NewHTTPWithTimeout(60 * time.Second) }

func NewHTTPWithTimeout(timeout time.Duration) *HTTP {
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

// WithToken returns a copy that sends token as a bearer credential.
func (h *HTTP) WithToken(token string) *HTTP {
	return &HTTP{c: h.c, token: token}
}

func (h *HTTP) authorize(req *http.Request) {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}
