package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/whoopsync/internal/version"
)

type whoopsyncTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*whoopsyncTransport)(nil)

func (t *whoopsyncTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(UserAgent, version.UserAgent())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper that stamps the whoopsync User-Agent.
func NewTransport() http.RoundTripper {
	return &whoopsyncTransport{base: http.DefaultTransport}
}
