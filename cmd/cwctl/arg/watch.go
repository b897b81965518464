package arg

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
	"github.com/SoarinFerret/CycleWarden/internal/tui"
)

var refresh time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Show a live countdown of the running cycle",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			return tui.Run(client, refresh)
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&refresh, "refresh", time.Second, "how often to poll the daemon")
	rootCmd.AddCommand(watchCmd)
}
