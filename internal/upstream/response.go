// Package upstream implements the key-rotation request loop (C4): given a
// request, it attempts it against the upstream provider once per key in
// the smart-shuffled order, rotating past any key whose response matches
// the active rotation-code policy, until one succeeds or every key in the
// request's order has been tried.
package upstream

import (
	"errors"
	"net/http"

	"github.com/relaykit/relaykit/internal/domain"
)

// Response is the buffered upstream HTTP response forwarded verbatim to
// the client.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// ErrProviderNotConfigured is returned when a provider's key pool is
// empty, which the dispatcher maps to a 503.
var ErrProviderNotConfigured = errors.New("upstream: provider has no configured keys")

// exhaustedBody returns the synthetic response body sent when every key
// in the request's attempt order came back rotation-limited, keyed by
// credential flavor so the client sees a shape it already parses.
func exhaustedBody(flavor domain.Flavor) []byte {
	switch flavor {
	case domain.FlavorGemini:
		return []byte(`{"error":{"code":429,"message":"All API keys have been rate limited for this request","status":"RESOURCE_EXHAUSTED"}}`)
	default:
		return []byte(`{"error":{"message":"All OpenAI API keys have been rate limited for this request","type":"rate_limit_exceeded","code":"rate_limit_exceeded"}}`)
	}
}
