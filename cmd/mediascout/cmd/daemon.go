package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/app"
	"github.com/corey/mediascout/internal/config"
	"github.com/corey/mediascout/internal/logging"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the mediascout daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start [dir]",
	Short: "Run the daemon in the foreground",
	Long: "Watches dir (default: configured root or working directory), keeps the\n" +
		"catalog in <dir>/.mediascout/library.db, and serves the control socket\n" +
		"and HTTP API until stopped.",
	Args: cobra.MaximumNArgs(1),
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	f := daemonStartCmd.Flags()
	f.Bool("no-http", false, "disable the HTTP API")
	f.Int("http-port", 0, "HTTP API port (default: derived from root)")
	bindFlags(f, map[string]string{config.KeyHTTPPort: "http-port"})

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root, err := watchRoot(args)
	if err != nil {
		return err
	}
	if noHTTP, _ := cmd.Flags().GetBool("no-http"); noHTTP {
		settings.HTTP.Enabled = false
	}
	sockPath := settings.Socket
	if sockPath == "" {
		sockPath = socket.SocketPath(root)
	}

	// Check if already running
	if socket.NewClient(sockPath).Ping() {
		fmt.Println("daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	logCfg := settings.Log
	if logCfg.File == "" {
		logCfg.File = paths.DaemonLog
	}
	log, closer, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := app.New(app.Config{Root: root, Settings: settings, Logger: log})
	if err != nil {
		if isDBLockError(err) {
			return errors.New(diagnoseDBLock(sockPath))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}
	os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644)
	defer paths.CleanEphemeral()

	fmt.Printf("mediascout daemon watching %s\n", root)
	fmt.Printf("  socket: %s\n", sockPath)
	if a.WebServer != nil && a.WebServer.Port() != 0 {
		fmt.Printf("  http:   %s\n", a.WebServer.URL())
	}
	fmt.Printf("  log:    %s\n", logCfg.File)

	// Wait for OS signal or remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\nshutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client, _, err := daemonClient()
	if err != nil {
		return err
	}
	if !client.Ping() {
		fmt.Println("daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("daemon stopped")
	return nil
}
