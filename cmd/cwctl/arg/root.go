package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/CycleWarden/internal/ipc"
)

var rootCmd = &cobra.Command{
	Use:   "cwctl",
	Short: "cwctl is the command line tool for CycleWarden",
	Long: `cwctl talks to the cyclewardend service over the session D-Bus.
Use it to start and interrupt focus cycles, check the countdown and
review past cycles.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

// withClient dials the daemon and closes the connection after fn returns.
func withClient(fn func(*ipc.Client) error) error {
	client, err := ipc.Dial()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}
