package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbthelper/internal/format"
)

var taxonomyFlags struct {
	format string
}

var taxonomyCmd = &cobra.Command{
	Use:       "taxonomy [states|distortions|strategies|ladder|guide]",
	Short:     "Print the built-in catalogs",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"states", "distortions", "strategies", "ladder", "guide"},
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "guide"
		if len(args) > 0 {
			which = args[0]
		}
		m := format.ParseMode(taxonomyFlags.format)
		var text string
		switch which {
		case "states":
			text = format.States(m)
		case "distortions":
			text = format.Distortions(m)
		case "strategies":
			text = format.Strategies(m)
		case "ladder":
			text = format.Ladder(m)
		default:
			text = format.Guide()
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	taxonomyCmd.Flags().StringVar(&taxonomyFlags.format, "format", "table", "Output: table or markdown")
}
