// Package ui provides cyberpunk-styled console output for the proxy.
// It creates a visually impressive terminal experience with colorized logs,
// status badges, and ASCII art.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS - Cyberpunk Theme
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)

	// Special colors
	neonBlue = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS BADGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintRotation logs a key being rotated out of a request after a
// rotation-coded response.
// Format: ⚠️ [ROTATE] provider: key rotated out
func PrintRotation(provider, key string) {
	fmt.Print("⚠️  ")
	warningBadge.Print("[ROTATE]")
	fmt.Printf(" %s: ", provider)
	mutedText.Print(maskKeyShort(key))
	warningText.Println(" rotated out")
}

// PrintKeyExhausted logs that every key in a provider's pool returned a
// rotation-triggering status for one request.
// Format: 💀 [EXHAUSTED] provider: all N keys rate limited
func PrintKeyExhausted(provider string, keyCount int) {
	fmt.Print("💀 ")
	errorBadge.Print(" EXHAUSTED ")
	fmt.Printf(" %s: ", provider)
	errorText.Printf("all %d keys rate limited\n", keyCount)
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// maskKeyShort returns a short masked version of an API key.
// Format: xxxx...xxxx
func maskKeyShort(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(host string, port int, providers []string, totalKeys int) {
	fmt.Println()
	infoBadge.Print("[ROUTER]")
	fmt.Print(" Server starting on ")
	neonBlue.Printf("http://%s:%d\n", host, port)

	infoBadge.Print("[ROUTER]")
	fmt.Print(" Providers: ")
	if len(providers) > 0 {
		successText.Print(strings.Join(providers, ", "))
	} else {
		errorText.Print("none")
	}
	fmt.Print(" | Total keys: ")
	accentText.Println(totalKeys)

	fmt.Println()
	printEndpoints(providers)
}

// printEndpoints prints the routable provider prefixes.
func printEndpoints(providers []string) {
	mutedText.Println("  ┌─────────────────────────────────────────────────────────┐")

	for _, p := range providers {
		mutedText.Print("  │ ")
		methodPOST.Print(" ANY  ")
		fmt.Printf(" /%-20s", p+"/*")
		mutedText.Print(" proxied to the provider's upstream")
		mutedText.Println(" │")
	}

	mutedText.Print("  │ ")
	methodGET.Print(" GET  ")
	fmt.Print(" /admin/providers/:name/stats ")
	mutedText.Print("pool stats   ")
	mutedText.Println(" │")

	mutedText.Println("  └─────────────────────────────────────────────────────────┘")
	fmt.Println()
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Println()
	warningBadge.Print("[SHUTDOWN]")
	warningText.Println(" Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Print(" OK ")
	fmt.Print(" ")
	successText.Println("Server stopped. Goodbye! 👋")
}
