package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the countdown of the running cycle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			view, err := client.Countdown()
			if err != nil {
				return err
			}
			fmt.Println(formatCountdown(view))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
