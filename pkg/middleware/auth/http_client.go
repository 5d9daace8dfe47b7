package auth

import (
	"net/http"
	"time"
)

// HTTPDoer is satisfied by *http.Client; key set fetches go through it.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// keyFetchTimeout bounds a single key set request end to end.
const keyFetchTimeout = 8 * time.Second

// ProvideHTTPClient is the client used for key set fetches.
func ProvideHTTPClient() HTTPDoer {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		},
		Timeout: keyFetchTimeout,
	}
}
