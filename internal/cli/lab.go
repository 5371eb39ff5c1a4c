package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storagelab/storagelab/internal/lab"
	"github.com/storagelab/storagelab/internal/logger"
)

var labCmd = &cobra.Command{
	Use:   "lab",
	Short: "Run guided storage exercises",
}

var labListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available exercises",
	RunE:  runLabList,
}

var labRunCmd = &cobra.Command{
	Use:   "run <exercise>",
	Short: "Run an exercise in the lab VM",
	Args:  cobra.ExactArgs(1),
	RunE:  runLabRun,
}

func init() {
	labCmd.AddCommand(labListCmd)
	labCmd.AddCommand(labRunCmd)
}

func runLabList(cmd *cobra.Command, args []string) error {
	for _, ex := range lab.All() {
		fmt.Printf("%-16s %s\n", ex.Name, ex.Title)
	}
	return nil
}

func runLabRun(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	ex, err := lab.Get(args[0])
	if err != nil {
		return err
	}

	if !e.ctrl.IsRunning() {
		return fmt.Errorf("lab VM is not running, start it with 'storagelab start'")
	}
	if !e.guest.Check() {
		return fmt.Errorf("lab VM is running but SSH is not reachable yet, try again shortly")
	}

	runner := lab.NewRunner(e.guest, os.Stdout, logger.WithComponent("lab"))
	report, err := runner.Run(cmd.Context(), ex)
	if err != nil {
		return err
	}
	if !report.Passed() {
		return fmt.Errorf("exercise %q finished with %d failed check(s)", ex.Name, report.ProbesFailed)
	}
	return nil
}
