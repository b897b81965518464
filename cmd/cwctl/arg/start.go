package arg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/form"
	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var minutes string

var startCmd = &cobra.Command{
	Use:     "start <task...>",
	Aliases: []string{"s"},
	Short:   "Start a focus cycle",
	Long: `Start a focus cycle for a task. Only one cycle can run at a time.
Examples:
  cwctl start Write report
  cwctl start "Study technology" -m 45`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return form.Suggestions(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// validate locally so bad input never needs the bus
		data, err := form.Parse(strings.Join(args, " "), minutes)
		if err != nil {
			return err
		}

		return withClient(func(client *ipc.Client) error {
			started, err := client.StartCycle(data.Task, data.MinutesAmount)
			if err != nil {
				return err
			}
			fmt.Println(formatStarted(started))
			return nil
		})
	},
}

func minuteChoices() []string {
	var out []string
	for m := form.MinMinutes; m <= form.MaxMinutes; m += form.MinMinutes {
		out = append(out, strconv.Itoa(m))
	}
	return out
}

func init() {
	startCmd.Flags().StringVarP(&minutes, "minutes", "m", strconv.Itoa(form.DefaultMinutes),
		fmt.Sprintf("cycle length in minutes (%d-%d)", form.MinMinutes, form.MaxMinutes))
	_ = startCmd.RegisterFlagCompletionFunc("minutes", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return minuteChoices(), cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.AddCommand(startCmd)
}
