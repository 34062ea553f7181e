package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var retargetCmd = &cobra.Command{
	Use:   "retarget <dir>",
	Short: "Point the running daemon at another directory",
	Long:  "Replaces the daemon's watch with dir and rebuilds dir's catalog from a fresh scan.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetarget,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop discovering without stopping the daemon",
	Long:  "The catalog is kept. Resume with: mediascout retarget <dir>",
	Args:  cobra.NoArgs,
	RunE:  runPause,
}

func runRetarget(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	client, _, err := daemonClient()
	if err != nil {
		return err
	}
	if !client.Ping() {
		return fmt.Errorf("daemon is not running")
	}

	st, err := client.Start(dir)
	if err != nil {
		return err
	}
	fmt.Print(formatStatus(st))
	if st.Error != "" {
		return fmt.Errorf("retarget %s failed", dir)
	}
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	client, _, err := daemonClient()
	if err != nil {
		return err
	}
	if !client.Ping() {
		return fmt.Errorf("daemon is not running")
	}

	st, err := client.Stop()
	if err != nil {
		return err
	}
	fmt.Print(formatStatus(st))
	return nil
}
