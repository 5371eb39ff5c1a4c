package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Stop the lab VM and delete its disks",
	Long: `Stop the lab VM if it is running, then delete the system disk, the
data disks and the seed image. Downloaded base images are kept so the
next setup does not re-download them.`,
	RunE: runDestroy,
}

func runDestroy(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	if _, err := e.ctrl.Stop(cmd.Context()); err != nil {
		return err
	}
	if err := e.builder.Destroy(); err != nil {
		return err
	}

	fmt.Println("Lab destroyed. Run 'storagelab setup' to build a fresh one.")
	return nil
}
