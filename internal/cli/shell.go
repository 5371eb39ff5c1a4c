package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive shell in the lab VM",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	if !e.ctrl.IsRunning() {
		return fmt.Errorf("lab VM is not running, start it with 'storagelab start'")
	}
	if !e.guest.Check() {
		return fmt.Errorf("lab VM is running but SSH is not reachable yet, try again shortly")
	}

	return e.guest.Interactive()
}
