package arg

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/history"
	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var (
	output string
	today  bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "List past and running cycles, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := history.Format(output)
		return withClient(func(client *ipc.Client) error {
			if today {
				summary, err := client.Summary()
				if err != nil {
					return err
				}
				return history.WriteSummary(os.Stdout, summary, format)
			}
			rows, err := client.History()
			if err != nil {
				return err
			}
			return history.Write(os.Stdout, rows, format)
		})
	},
}

func init() {
	historyCmd.Flags().StringVarP(&output, "output", "o", string(history.FormatTable), "output format: table, json or yaml")
	historyCmd.Flags().BoolVar(&today, "today", false, "show today's totals instead of the cycle list")
	_ = historyCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{string(history.FormatTable), string(history.FormatJSON), string(history.FormatYAML)},
		cobra.ShellCompDirectiveNoFileComp))
	rootCmd.AddCommand(historyCmd)
}
