package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cbthelper/internal/engine"
)

var thinkFlags struct {
	session string
	depth   string
	start   int
	level   int
	force   bool
	json    bool
}

var thinkCmd = &cobra.Command{
	Use:   "think",
	Short: "Run a depth-ladder thinking protocol",
	Long: `Starts and advances a depth-ladder protocol on a session. Levels are
produced strictly in order; use a persistent store to continue a protocol
across invocations.

Usage:
  cbthelper --store=sqlite think start "retry strategy" --session=t1 --depth=critical
  cbthelper --store=sqlite think next --session=t1
  cbthelper --store=sqlite think summary --session=t1`,
}

var thinkStartCmd = &cobra.Command{
	Use:   "start <topic>",
	Short: "Start a protocol and print its first phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.InitiateDeepThinking(engine.InitiateRequest{
				SessionID: thinkFlags.session,
				Topic:     args[0],
				Depth:     thinkFlags.depth,
				Start:     thinkFlags.start,
				Force:     thinkFlags.force,
			})
			if err != nil {
				return err
			}
			return printPhase(cmd, res)
		})
	},
}

var thinkNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance the protocol by one level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.AdvanceThinking(thinkFlags.session, thinkFlags.level)
			if err != nil {
				return err
			}
			return printPhase(cmd, res)
		})
	},
}

var thinkSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print depth, breadth and integration scores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.ThinkingSummary(thinkFlags.session)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if thinkFlags.json {
				return printJSON(out, res)
			}
			switch {
			case !res.Found:
				fmt.Fprintf(out, "session %q not found\n", thinkFlags.session)
			case !res.Active:
				fmt.Fprintf(out, "session %q has no thinking protocol\n", thinkFlags.session)
			default:
				m := res.Metrics
				fmt.Fprintf(out, "%s on %q: level %d/%d, %d phases\n", m.Kind, m.Topic, m.Current, m.Target, m.Phases)
				fmt.Fprintf(out, "depth %.2f  breadth %.2f  integration %.2f\n", m.DepthScore, m.BreadthScore, m.IntegrationScore)
			}
			return nil
		})
	},
}

var thinkResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the session's protocol",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(func(eng *engine.Engine) error {
			res, err := eng.ResetThinking(thinkFlags.session)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset: %t\n", res.Reset)
			return nil
		})
	},
}

func init() {
	pf := thinkCmd.PersistentFlags()
	pf.StringVar(&thinkFlags.session, "session", "", "Session ID")
	pf.BoolVar(&thinkFlags.json, "json", false, "Print JSON")
	thinkStartCmd.Flags().StringVar(&thinkFlags.depth, "depth", "", "Target depth: surface..transcendent or 1-7 (default transcendent)")
	thinkStartCmd.Flags().IntVar(&thinkFlags.start, "start", 0, "First level (default 1)")
	thinkStartCmd.Flags().BoolVar(&thinkFlags.force, "force", false, "Replace an unfinished protocol")
	thinkNextCmd.Flags().IntVar(&thinkFlags.level, "level", 0, "Expected next level (optional)")

	thinkCmd.AddCommand(thinkStartCmd, thinkNextCmd, thinkSummaryCmd, thinkResetCmd)
}

func withEngine(fn func(*engine.Engine) error) error {
	eng, st, err := openEngine()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(eng)
}

func printPhase(cmd *cobra.Command, res engine.ThinkingResponse) error {
	out := cmd.OutOrStdout()
	if thinkFlags.json {
		return printJSON(out, res)
	}
	if res.Terminal || res.Phase == nil {
		fmt.Fprintf(out, "%s: target level %d reached; run \"think summary\"\n", res.SessionID, res.Target)
		return nil
	}
	p := res.Phase
	fmt.Fprintf(out, "%s  level %d/%d  %s  [%s lens]\n\n", res.SessionID, p.Level, res.Target, p.Name, p.Lens)
	fmt.Fprintln(out, p.Prompt)
	for _, q := range p.Questions {
		fmt.Fprintf(out, "  - %s\n", q)
	}
	if p.BuildsOn != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(p.BuildsOn))
	}
	return nil
}
