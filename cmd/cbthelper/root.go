package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbthelper/internal/config"
	"cbthelper/internal/logging"
	"cbthelper/internal/mcp"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath  string
	envFile     string
	logLevel    string
	logFormat   string
	storeDriver string
	storePath   string
}

// cfg is loaded by the root PersistentPreRunE before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cbthelper",
	Short: "Cognitive behavioral therapy techniques for stuck AI agents",
	Long: `cbthelper detects when an agent is stuck (looping, overwhelmed,
perfectionist...), tracks its frustration across calls and answers with a
CBT intervention. It also runs structured deep-thinking protocols.

Run "cbthelper serve" to expose every operation as an MCP tool over stdio.
The other commands run the same operations from the shell; use the sqlite
store to keep sessions between invocations.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", config.DefaultPath, "Config file (YAML); missing file means defaults")
	f.StringVar(&rootFlags.envFile, "env-file", ".env", "dotenv file with CBTHELPER_* overrides")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	f.StringVar(&rootFlags.storeDriver, "store", "", "Session store: memory or sqlite (overrides config)")
	f.StringVar(&rootFlags.storePath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(thinkCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(taxonomyCmd)
	rootCmd.Version = version
}

// loadConfig resolves configuration in order: defaults, config file,
// dotenv and environment, then command-line flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(rootFlags.envFile); err != nil {
		return err
	}
	c, err := config.LoadFromPath(rootFlags.configPath)
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Log.Format = rootFlags.logFormat
	}
	if rootFlags.storeDriver != "" {
		c.Store.Driver = rootFlags.storeDriver
	}
	if rootFlags.storePath != "" {
		c.Store.Path = rootFlags.storePath
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init(logging.ParseLevel(c.Log.Level), c.Log.Format, cmd.ErrOrStderr())
	mcp.Version = version
	cfg = c
	return nil
}
