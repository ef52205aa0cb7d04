// Package domain contains the core business entities and value objects.
// These types are framework-agnostic and represent the heart of the router.
package domain

// Flavor identifies the credential-passing convention a provider speaks.
type Flavor string

const (
	// FlavorOpenAI carries credentials as "Authorization: Bearer <key>".
	FlavorOpenAI Flavor = "openai"

	// FlavorGemini carries credentials via "x-goog-api-key" or a "?key=" query param.
	FlavorGemini Flavor = "gemini"
)

// Valid reports whether f is a recognized flavor.
func (f Flavor) Valid() bool {
	switch f {
	case FlavorOpenAI, FlavorGemini:
		return true
	default:
		return false
	}
}

// GeminiCredentialHeader is the native upstream header Gemini clients may
// present directly, bypassing key rotation (see Client.MakeRequest).
const GeminiCredentialHeader = "x-goog-api-key"
