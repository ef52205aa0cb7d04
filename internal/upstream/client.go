package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/relaykit/relaykit/internal/domain"
	"github.com/relaykit/relaykit/internal/ui"
)

// DefaultRotationCodes is the rotation policy used when the caller does
// not supply one.
var DefaultRotationCodes = []int{429}

// ErrExhaustedNoResponse surfaces when a rotation loop exhausts every key
// without ever receiving a rotation-coded response or a transport error
// — unreachable in practice, kept as a defensive terminal state.
var ErrExhaustedNoResponse = errors.New("upstream: key pool exhausted with no response or error recorded")

var versionSegmentRe = regexp.MustCompile(`^/v([A-Za-z0-9]+)/`)

// Client executes attempts against one provider's upstream, rotating
// across its key pool under a rotation-code policy.
type Client struct {
	// Name is the provider name, used only for console/log output.
	Name    string
	Flavor  domain.Flavor
	BaseURL string
	Pool    *domain.KeyPool

	HTTP *http.Client
}

// NewClient builds a Client for one provider. A zero-value http.Client
// is substituted when http is nil.
func NewClient(flavor domain.Flavor, baseURL string, pool *domain.KeyPool, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{Flavor: flavor, BaseURL: baseURL, Pool: pool, HTTP: httpClient}
}

// WithName sets the display name used in console output and returns c.
func (c *Client) WithName(name string) *Client {
	c.Name = name
	return c
}

func (c *Client) displayName() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Flavor)
}

// MakeRequest executes method/path against the upstream, substituting a
// pool key and rotating on any response whose status is in rotationCodes
// (nil means DefaultRotationCodes). If headers already carries the
// Gemini native credential header, rotation is bypassed entirely and a
// single attempt is made with that key.
func (c *Client) MakeRequest(ctx context.Context, method, path string, body []byte, headers http.Header, rotationCodes []int) (Response, error) {
	if c.Flavor == domain.FlavorGemini {
		if clientKey := headers.Get(domain.GeminiCredentialHeader); clientKey != "" {
			forwarded := headers.Clone()
			forwarded.Del(domain.GeminiCredentialHeader)
			return c.attempt(ctx, method, path, body, forwarded, clientKey, true)
		}
	}

	if c.Pool.Size() == 0 {
		return Response{}, ErrProviderNotConfigured
	}

	if rotationCodes == nil {
		rotationCodes = DefaultRotationCodes
	}
	codes := make(map[int]struct{}, len(rotationCodes))
	for _, code := range rotationCodes {
		codes[code] = struct{}{}
	}

	reqCtx := c.Pool.NewContext()

	var lastResponse *Response
	var lastError error

	for {
		key, ok := reqCtx.NextKey()
		if !ok {
			break
		}

		resp, err := c.attempt(ctx, method, path, body, headers.Clone(), key, false)
		if err != nil {
			lastError = err
			continue
		}

		if _, rotate := codes[resp.Status]; rotate {
			lastResponse = &resp
			reqCtx.MarkRateLimited(key)
			ui.PrintRotation(c.displayName(), key)
			continue
		}

		c.Pool.UpdateLastFailedKey(lastFailedKeyOf(reqCtx))
		return resp, nil
	}

	c.Pool.UpdateLastFailedKey(lastFailedKeyOf(reqCtx))

	if reqCtx.AllTriedAreRateLimited() {
		ui.PrintKeyExhausted(c.displayName(), c.Pool.Size())
		if lastResponse != nil {
			return *lastResponse, nil
		}
		return Response{
			Status:  http.StatusTooManyRequests,
			Headers: http.Header{"Content-Type": []string{"application/json"}},
			Body:    exhaustedBody(c.Flavor),
		}, nil
	}

	if lastError != nil {
		return Response{}, fmt.Errorf("upstream: all attempts failed: %w", lastError)
	}

	return Response{}, ErrExhaustedNoResponse
}

func lastFailedKeyOf(ctx *domain.RequestContext) string {
	key, ok := ctx.LastFailedInRequest()
	if !ok {
		return ""
	}
	return key
}

// attempt performs exactly one HTTP round trip with the given key.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, headers http.Header, key string, bypass bool) (Response, error) {
	target, err := resolveURL(c.BaseURL, path)
	if err != nil {
		return Response{}, fmt.Errorf("upstream: resolving URL: %w", err)
	}

	switch c.Flavor {
	case domain.FlavorOpenAI:
		if headers.Get("Authorization") == "" {
			headers.Set("Authorization", "Bearer "+key)
		}
	case domain.FlavorGemini:
		if bypass {
			headers.Set(domain.GeminiCredentialHeader, key)
		} else {
			q := target.Query()
			q.Set("key", key)
			target.RawQuery = q.Encode()
		}
	}

	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "application/json")
	}
	if len(body) > 0 && method != http.MethodGet {
		headers.Set("Content-Length", strconv.Itoa(len(body)))
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("upstream: building request: %w", err)
	}
	req.Header = headers

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("upstream: transport: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("upstream: reading response: %w", err)
	}

	return Response{Status: resp.StatusCode, Headers: resp.Header, Body: respBody}, nil
}

// resolveURL joins base and path, reconciling a Gemini-style version
// segment mismatch between the two (see Client.attempt doc).
func resolveURL(base, path string) (*url.URL, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	if path == "" || path == "/" {
		return baseURL, nil
	}

	pathURL, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	reqPath := pathURL.Path

	basePath := baseURL.Path
	if m := versionSegmentRe.FindStringSubmatch(reqPath); m != nil {
		pathVersion := "v" + m[1]
		if baseVersion, ok := trailingVersionSegment(basePath); ok && baseVersion != pathVersion {
			basePath = trimTrailingSegment(basePath) + "/" + pathVersion
			reqPath = reqPath[len(m[0])-1:]
		}
	}

	joined := *baseURL
	joined.Path = joinPaths(basePath, reqPath)
	joined.RawQuery = pathURL.RawQuery
	return &joined, nil
}

var trailingVersionRe = regexp.MustCompile(`/v([A-Za-z0-9]+)$`)

func trailingVersionSegment(p string) (string, bool) {
	m := trailingVersionRe.FindStringSubmatch(p)
	if m == nil {
		return "", false
	}
	return "v" + m[1], true
}

func trimTrailingSegment(p string) string {
	idx := bytes.LastIndexByte([]byte(p), '/')
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

func joinPaths(a, b string) string {
	switch {
	case a == "" && b == "":
		return "/"
	case a == "":
		return b
	case b == "":
		return a
	}

	aTrim := a
	if aTrim[len(aTrim)-1] == '/' {
		aTrim = aTrim[:len(aTrim)-1]
	}
	bTrim := b
	if bTrim[0] == '/' {
		bTrim = bTrim[1:]
	}
	return aTrim + "/" + bTrim
}
