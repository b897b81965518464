package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check if cyclewardend is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			result, err := client.Status()
			if err != nil {
				return err
			}
			fmt.Println("CycleWarden Status:", result)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
