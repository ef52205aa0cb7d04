package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/relaykit/relaykit/internal/config"
	"github.com/relaykit/relaykit/internal/directive"
	"github.com/relaykit/relaykit/internal/domain"
	"github.com/relaykit/relaykit/internal/router"
	"github.com/relaykit/relaykit/internal/upstream"
)

var (
	openAIForwardHeaders = []string{"content-type", "accept", "user-agent", "openai-organization", "openai-project"}
	geminiForwardHeaders = []string{"content-type", "accept", "user-agent", "x-goog-user-project"}
)

// Dispatcher implements the proxy dispatcher: resolve route, extract
// directives, check access, dispatch through the provider's upstream
// client, and copy the response back to the client verbatim.
type Dispatcher struct {
	Config  config.Provider
	Clients *ClientCache
	Logger  *slog.Logger
}

// NewDispatcher builds a Dispatcher over a live configuration source and
// client cache.
func NewDispatcher(cfg config.Provider, clients *ClientCache, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Config: cfg, Clients: clients, Logger: logger}
}

// Handle is the gin.HandlerFunc for the catch-all proxy route.
func (d *Dispatcher) Handle(c *gin.Context) {
	snapshot := d.Config.Snapshot()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeErrorEnvelope(c, http.StatusInternalServerError, "failed to read request body", "INTERNAL")
		return
	}

	route, ok := router.Resolve(c.Request.URL.Path, c.Request.URL.RawQuery, func(name string) bool {
		_, found := snapshot.Provider(name)
		return found
	})
	if !ok {
		writeErrorEnvelope(c, http.StatusBadRequest, "Invalid API path", "INVALID_ARGUMENT")
		return
	}

	c.Set("route_provider", route.Provider)
	c.Set("route_legacy", route.Legacy)

	providerCfg, found := snapshot.Provider(route.Provider)
	if !found && route.Legacy {
		providerCfg, found = snapshot.LegacyProvider(route.Provider)
	}
	if !found {
		writeErrorEnvelope(c, http.StatusServiceUnavailable, "Provider not configured", "INTERNAL")
		return
	}

	authHeaderName := "Authorization"
	if providerCfg.Flavor == domain.FlavorGemini {
		authHeaderName = domain.GeminiCredentialHeader
	}

	parsed := directive.Parse(c.GetHeader(authHeaderName))

	if providerCfg.AccessKey != "" {
		if !parsed.HasAccessKey || parsed.AccessKey != providerCfg.AccessKey {
			writeErrorEnvelope(c, http.StatusUnauthorized, "missing or invalid access key", "INVALID_ARGUMENT")
			return
		}
	}

	forwarded := filterHeaders(c.Request.Header, forwardWhitelist(providerCfg.Flavor))
	if parsed.CleanedHeader != "" {
		forwarded.Set(authHeaderName, parsed.CleanedHeader)
	}

	rotationCodes := parsed.RotationCodes
	if rotationCodes == nil {
		rotationCodes = providerCfg.RotationCodes
	}

	client := d.Clients.Get(providerCfg)
	resp, err := client.MakeRequest(c.Request.Context(), c.Request.Method, route.UpstreamPath, body, forwarded, rotationCodes)
	if err != nil {
		if errors.Is(err, upstream.ErrProviderNotConfigured) {
			writeErrorEnvelope(c, http.StatusServiceUnavailable, "Provider not configured", "INTERNAL")
			return
		}
		d.Logger.Error("upstream attempt failed",
			slog.String("provider", route.Provider),
			slog.String("error", err.Error()),
		)
		writeErrorEnvelope(c, http.StatusInternalServerError, "upstream request failed", "INTERNAL")
		return
	}

	for key, values := range resp.Headers {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Data(resp.Status, contentTypeOf(resp.Headers), resp.Body)
}

func filterHeaders(src http.Header, whitelist []string) http.Header {
	dst := http.Header{}
	for _, name := range whitelist {
		if v := src.Get(name); v != "" {
			dst.Set(name, v)
		}
	}
	return dst
}

func forwardWhitelist(flavor domain.Flavor) []string {
	if flavor == domain.FlavorGemini {
		return geminiForwardHeaders
	}
	return openAIForwardHeaders
}

func contentTypeOf(headers http.Header) string {
	if ct := headers.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/json"
}

// writeErrorEnvelope writes the dispatcher's JSON error shape and aborts
// the gin context.
func writeErrorEnvelope(c *gin.Context, status int, message, statusText string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    status,
			"message": message,
			"status":  statusText,
		},
	})
}
