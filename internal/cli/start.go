package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storagelab/storagelab/internal/timing"
	"github.com/storagelab/storagelab/internal/vm"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the lab VM and wait for guest SSH",
	Long: `Start the lab VM. A no-op if it is already running. The command
returns once the guest accepts SSH logins; on first boot that includes
cloud-init installing the storage tooling, which takes a few minutes.`,
	RunE: runStart,
}

var (
	startConsole bool
	startTiming  bool
)

func init() {
	startCmd.Flags().BoolVar(&startConsole, "console", false, "show the VM console window instead of running headless")
	startCmd.Flags().BoolVar(&startTiming, "timing", false, "print a phase timing breakdown")
}

func runStart(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	var timer *timing.Timer
	if startTiming {
		timer = timing.New()
	}

	if err := e.ctrl.Start(cmd.Context(), startConsole); err != nil {
		switch {
		case errors.Is(err, vm.ErrSetupIncomplete):
			return fmt.Errorf("lab disks are missing, run 'storagelab setup' first (%v)", err)
		case errors.Is(err, vm.ErrGuestUnreachable):
			return fmt.Errorf("VM is up but the guest never became reachable: %v", err)
		default:
			return err
		}
	}
	if timer != nil {
		timer.Mark("boot+ready")
		timer.Report(os.Stdout)
	}

	fmt.Printf("Lab VM ready. SSH on 127.0.0.1:%d, or use 'storagelab shell'.\n", e.cfg.SSHPort)
	return nil
}
