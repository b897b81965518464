package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var interruptCmd = &cobra.Command{
	Use:     "interrupt",
	Aliases: []string{"stop", "i"},
	Short:   "Interrupt the running cycle",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			ok, err := client.InterruptCycle()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No active cycle")
				return nil
			}
			fmt.Println("Cycle interrupted")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(interruptCmd)
}
