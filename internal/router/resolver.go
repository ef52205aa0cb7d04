// Package router resolves an incoming request path into a provider name
// and the path to forward upstream, including the legacy /gemini/* and
// /openai/* aliases.
package router

import "strings"

// Route is the result of resolving a request path.
type Route struct {
	// Provider is the matched provider name, lowercased.
	Provider string

	// UpstreamPath is the path (plus "?querystring" if any) to forward,
	// always beginning with "/".
	UpstreamPath string

	// Legacy indicates the route matched via the /gemini/ or /openai/
	// built-in alias rather than a configured provider name.
	Legacy bool
}

// IsConfigured reports whether name (already lowercased) names a
// configured provider.
type IsConfigured func(name string) bool

// legacyProviders maps the built-in alias prefixes to the provider name
// they fall back to when no same-named provider is configured.
var legacyProviders = map[string]string{
	"gemini": "gemini",
	"openai": "openai",
}

// Resolve splits path on "/", drops empty segments, and matches the
// first segment against isConfigured. If it doesn't match a configured
// provider but is "gemini" or "openai", a legacy route is produced
// instead. Returns ok=false when neither applies.
func Resolve(path, rawQuery string, isConfigured IsConfigured) (Route, bool) {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return Route{}, false
	}

	first := strings.ToLower(segments[0])
	rest := segments[1:]
	upstreamPath := joinUpstreamPath(rest, rawQuery)

	if isConfigured(first) {
		return Route{Provider: first, UpstreamPath: upstreamPath}, true
	}

	if legacyName, ok := legacyProviders[first]; ok {
		return Route{Provider: legacyName, UpstreamPath: upstreamPath, Legacy: true}, true
	}

	return Route{}, false
}

func splitSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func joinUpstreamPath(segments []string, rawQuery string) string {
	upstreamPath := "/" + strings.Join(segments, "/")
	if rawQuery != "" {
		upstreamPath += "?" + rawQuery
	}
	return upstreamPath
}
