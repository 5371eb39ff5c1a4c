package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <command>...",
	Short: "Run a command in the lab VM",
	Long: `Run a single command in the lab VM over SSH and print its output.
The command's exit status becomes this process's exit status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	if !e.ctrl.IsRunning() {
		return fmt.Errorf("lab VM is not running, start it with 'storagelab start'")
	}

	out, status, err := e.guest.Exec(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Print(out)
	if status != 0 {
		os.Exit(status)
	}
	return nil
}
