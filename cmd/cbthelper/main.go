// cbthelper is the CBT helper for stuck agents: an MCP server plus a CLI
// over the same session engine.
//
// Usage:
//
//	cbthelper serve [--metrics-addr=127.0.0.1:9464]
//	cbthelper analyze "<situation>" [--session=<id>] [--pattern=<name>]
//	cbthelper think start "<topic>" --session=<id> [--depth=<level>]
//	cbthelper think next --session=<id>
//	cbthelper summary <session-id> [--format=table|markdown|json]
//	cbthelper sessions list | delete <session-id>
//	cbthelper taxonomy [states|distortions|strategies|ladder|guide]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
