package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cbthelper/internal/engine"
	"cbthelper/internal/format"
)

var summaryFlags struct {
	format string
}

var summaryCmd = &cobra.Command{
	Use:   "summary <session-id>",
	Short: "Print a session summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.SessionSummary(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if summaryFlags.format == "json" {
				return printJSON(out, res)
			}
			if !res.Found {
				fmt.Fprintf(out, "session %q not found\n", args[0])
				return nil
			}
			fmt.Fprintln(out, format.Summary(format.ParseMode(summaryFlags.format), res.Summary))
			return nil
		})
	},
}

var sessionsFlags struct {
	format string
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List or delete stored sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions in the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(func(eng *engine.Engine) error {
			infos := eng.ListSessions()
			if sessionsFlags.format == "json" {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Sessions(format.ParseMode(sessionsFlags.format), infos, time.Now()))
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.DeleteSession(args[0])
			if err != nil {
				return err
			}
			if !res.Deleted {
				return fmt.Errorf("session %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", res.SessionID)
			return nil
		})
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFlags.format, "format", "table", "Output: table, markdown or json")
	sessionsCmd.PersistentFlags().StringVar(&sessionsFlags.format, "format", "table", "Output: table, markdown or json")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsDeleteCmd)
}
