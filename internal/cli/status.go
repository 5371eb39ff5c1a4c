package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lab VM status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	snap := e.ctrl.Status()
	if !snap.Running {
		fmt.Println("Lab VM:  stopped")
		if e.builder.Complete() {
			fmt.Println("Disks:   ready (run 'storagelab start')")
		} else {
			fmt.Println("Disks:   missing (run 'storagelab setup')")
		}
		return nil
	}

	fmt.Println("Lab VM:  running")
	fmt.Printf("PID:     %d\n", snap.PID)
	if snap.SSHReachable {
		fmt.Printf("SSH:     127.0.0.1:%d (reachable)\n", e.cfg.SSHPort)
	} else {
		fmt.Printf("SSH:     127.0.0.1:%d (not reachable yet)\n", e.cfg.SSHPort)
	}
	return nil
}
