package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┬  ┬┌─┐
  ║║║├┤ ├─┤└┐┌┘├┤
  ╚╩╝└─┘┴ ┴ └┘ └─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "A fine-grained reactive runtime for server-driven Go UIs",
		Long: `Weave runs signal-graph components on the server and mirrors their
output to a remote Node tree over WebSocket.

  • Fine-grained signals, memos, and effects (no virtual DOM diffing)
  • Sequential Three-Way Splice reconciliation for keyed lists
  • A thin binary wire protocol between server and remote tree
  • Prometheus metrics and OpenTelemetry tracing on demand
  • Durable root snapshots via S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		versionCmd(),
		serveCmd(),
		benchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the weave ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
