// Package cli provides the command-line interface for storagelab.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storagelab",
	Short: "storagelab - disposable VM lab for RAID, LVM and ZFS practice",
	Long: `storagelab provisions a throwaway QEMU virtual machine and drives it
through guided storage exercises over SSH.

Typical session:

  storagelab setup      # download base image, build disks and seed
  storagelab start      # boot the VM, wait until SSH is ready
  storagelab lab list   # see available exercises
  storagelab lab run raid1
  storagelab shell      # poke around yourself
  storagelab stop       # tear the VM down

Everything lives under ~/.storagelab; 'storagelab destroy' resets the
session to factory state without re-downloading the base image.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(labCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(versionCmd)
}
