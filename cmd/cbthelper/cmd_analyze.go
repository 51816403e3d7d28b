package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cbthelper/internal/engine"
)

var analyzeFlags struct {
	session  string
	pattern  string
	attempts []string
	errors   []string
	level    int
	json     bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <situation>",
	Short: "Diagnose a stuck situation and print a CBT intervention",
	Long: `Classifies the situation into agent-states and cognitive distortions,
records a frustration level on the session and prints the intervention.

Usage:
  cbthelper analyze "Refactoring for the 5th time" --pattern="perfectionist loop"
  cbthelper analyze "tests still failing" --error="exit status 1" --session=s1 --store=sqlite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.session, "session", "", "Session ID (generated when empty)")
	f.StringVar(&analyzeFlags.pattern, "pattern", "", "Pattern name, e.g. \"error loop\"")
	f.StringArrayVar(&analyzeFlags.attempts, "attempt", nil, "Attempted solution (repeatable)")
	f.StringArrayVar(&analyzeFlags.errors, "error", nil, "Error message (repeatable)")
	f.IntVar(&analyzeFlags.level, "level", 0, "Frustration level 1-10 (inferred when 0)")
	f.BoolVar(&analyzeFlags.json, "json", false, "Print the full response as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine()
	if err != nil {
		return err
	}
	defer closeStore(st)

	req := engine.AnalyzeRequest{
		SessionID:          analyzeFlags.session,
		Pattern:            analyzeFlags.pattern,
		AttemptedSolutions: analyzeFlags.attempts,
		ErrorMessages:      analyzeFlags.errors,
	}
	if len(args) > 0 {
		req.Situation = args[0]
	}
	if analyzeFlags.level != 0 {
		lv := analyzeFlags.level
		req.FrustrationLevel = &lv
	}
	res, err := eng.Analyze(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if analyzeFlags.json {
		return printJSON(out, res)
	}
	states := make([]string, 0, len(res.States))
	for _, m := range res.States {
		states = append(states, m.Key)
	}
	if len(states) == 0 {
		states = append(states, "none detected")
	}
	fmt.Fprintf(out, "session:     %s\n", res.SessionID)
	fmt.Fprintf(out, "states:      %s\n", strings.Join(states, ", "))
	fmt.Fprintf(out, "frustration: %d (%s)\n", res.FrustrationLevel, res.Outcome)
	fmt.Fprintf(out, "strategy:    %s (%s)\n\n", res.Strategy, res.Reason)
	fmt.Fprintln(out, res.Intervention.Text)
	return nil
}
