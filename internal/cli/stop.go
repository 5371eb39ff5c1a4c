package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storagelab/storagelab/internal/vm"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the lab VM",
	Long: `Stop the lab VM. Tries an in-guest poweroff first, then the QEMU
management socket, then signals. Always succeeds; disks are kept.`,
	RunE: runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	method, err := e.ctrl.Stop(cmd.Context())
	if err != nil {
		return err
	}

	switch method {
	case vm.ShutdownNone:
		fmt.Println("Lab VM is not running.")
	case vm.ShutdownGraceful:
		fmt.Println("Lab VM shut down cleanly.")
	default:
		fmt.Printf("Lab VM stopped (via %s).\n", method)
	}
	return nil
}
