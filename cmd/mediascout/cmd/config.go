package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/mediascout/internal/app"
	"github.com/corey/mediascout/internal/config"
	"github.com/spf13/cobra"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the resolved root, state paths, socket, media filters and daemon status. No daemon required.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: "Writes the current settings to ./" + config.FileName + ", or with --global to\n" +
		"~/.config/mediascout/config.yaml.",
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write the per-user config instead")
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	client, root, err := daemonClient()
	if err != nil {
		return err
	}
	paths := app.NewPaths(root)
	dbPath := settings.DBPath
	if dbPath == "" {
		dbPath = paths.DB
	}

	daemonRunning := client.Ping()
	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}
	source := cfgUsed
	if source == "" {
		source = "(defaults)"
	}

	fmt.Printf("%smediascout config%s\n", colorBold, colorReset)
	fmt.Printf("  File:        %s\n", source)
	fmt.Printf("  Root:        %s\n", root)
	fmt.Printf("  Library:     %s\n", dbPath)
	fmt.Printf("  Debounce:    %s\n", settings.Debounce)
	fmt.Printf("  Workers:     %d\n", settings.ScanWorkers)
	fmt.Printf("  Extensions:  %s\n", strings.Join(settings.Media.Extensions, " "))
	if len(settings.Media.Exclude) > 0 {
		fmt.Printf("  Exclude:     %s\n", strings.Join(settings.Media.Exclude, " "))
	}
	fmt.Printf("  Daemon:      %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Printf("  HTTP:        http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.FileName
	if configInitGlobal {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "mediascout", "config.yaml")
	}
	if err := config.WriteFile(path, settings, configInitForce); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
