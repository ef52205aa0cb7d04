// Package ui provides cyberpunk-styled console output for the proxy.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASCII ART BANNER - Cyberpunk Theme
// ══════════════════════════════════════════════════════════════════════════════

// PrintBanner displays the ASCII art startup banner with cyberpunk styling.
func PrintBanner() {
	// Clear some space
	fmt.Println()

	// Define colors for gradient effect
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	hiMagenta := color.New(color.FgHiMagenta)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	// Top border
	cyan.Println("╔══════════════════════════════════════════════════════════════════════╗")

	// ASCII art wordmark with gradient
	cyan.Print("║  ")
	hiCyan.Print("██╗  ██╗")
	white.Print("██████╗ ")
	hiMagenta.Print("███╗   ██╗")
	dim.Print("    ")
	magenta.Print("██████╗  ██████╗ ██╗   ██╗████████╗███████╗██████╗ ")
	cyan.Println(" ║")

	cyan.Print("║  ")
	hiCyan.Print("██║  ██║")
	white.Print("██╔══██╗")
	hiMagenta.Print("████╗  ██║")
	dim.Print("    ")
	magenta.Print("██╔══██╗██╔═══██╗██║   ██║╚══██╔══╝██╔════╝██╔══██╗")
	cyan.Println(" ║")

	cyan.Print("║  ")
	hiCyan.Print("███████║")
	white.Print("██████╔╝")
	hiMagenta.Print("██╔██╗ ██║")
	dim.Print("    ")
	magenta.Print("██████╔╝██║   ██║██║   ██║   ██║   █████╗  ██████╔╝")
	cyan.Println(" ║")

	cyan.Print("║  ")
	hiCyan.Print("██╔══██║")
	white.Print("██╔═══╝ ")
	hiMagenta.Print("██║╚██╗██║")
	dim.Print("    ")
	magenta.Print("██╔══██╗██║   ██║██║   ██║   ██║   ██╔══╝  ██╔══██╗")
	cyan.Println(" ║")

	cyan.Print("║  ")
	hiCyan.Print("██║  ██║")
	white.Print("██║     ")
	hiMagenta.Print("██║ ╚████║")
	dim.Print("    ")
	magenta.Print("██║  ██║╚██████╔╝╚██████╔╝   ██║   ███████╗██║  ██║")
	cyan.Println(" ║")

	cyan.Print("║  ")
	hiCyan.Print("╚═╝  ╚═╝")
	white.Print("╚═╝     ")
	hiMagenta.Print("╚═╝  ╚═══╝")
	dim.Print("    ")
	magenta.Print("╚═╝  ╚═╝ ╚═════╝  ╚═════╝    ╚═╝   ╚══════╝╚═╝  ╚═╝")
	cyan.Println(" ║")

	// Middle separator
	cyan.Println("╠══════════════════════════════════════════════════════════════════════╣")

	// Info line
	cyan.Print("║  ")
	yellow.Print("⚡ MULTI-PROVIDER KEY ROUTER")
	dim.Print("  │  ")
	hiMagenta.Print("ROTATION ARMED")
	dim.Print("  │  ")
	white.Print("v1.0.0")
	dim.Print("                       ")
	cyan.Println("║")

	// Bottom border
	cyan.Println("╚══════════════════════════════════════════════════════════════════════╝")

	fmt.Println()
}

// PrintMiniBanner displays a smaller, simpler banner for constrained terminals.
func PrintMiniBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	cyan.Print("╔══════════════════════════════════════╗")
	fmt.Println()
	cyan.Print("║  ")
	magenta.Print("RELAYKIT")
	yellow.Print(" ⚡ ")
	cyan.Print("ROTATION ARMED  ")
	cyan.Print("║")
	fmt.Println()
	cyan.Print("╚══════════════════════════════════════╝")
	fmt.Println()
	fmt.Println()
}
