package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storagelab/storagelab/internal/timing"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Download the base image and build session disks",
	Long: `Download the configured base cloud image (cached across sessions),
create the qcow2 system disk overlay, the blank data disks used by the
exercises, and the cloud-init seed image. Safe to re-run; existing
artifacts are kept.`,
	RunE: runSetup,
}

var setupTiming bool

func init() {
	setupCmd.Flags().BoolVar(&setupTiming, "timing", false, "print a phase timing breakdown")
}

func runSetup(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	var timer *timing.Timer
	if setupTiming {
		timer = timing.New()
	}

	if err := e.builder.Run(); err != nil {
		return err
	}
	if timer != nil {
		timer.Mark("setup")
		timer.Report(os.Stdout)
	}

	fmt.Println("Setup complete. Start the lab with 'storagelab start'.")
	return nil
}
