package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	v        = config.New()
	settings *config.Config
	cfgFile  string
	cfgUsed  string
)

var rootCmd = &cobra.Command{
	Use:          "mediascout",
	Short:        "mediascout: media file discovery",
	Long:         "Watches a directory tree and reports media files as they appear and disappear.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		used, err := config.ReadFile(v, cfgFile)
		if err != nil {
			return err
		}
		cfgUsed = used
		settings, err = config.Load(v)
		return err
	},
}

// watchRoot returns the directory to operate on: the first argument, the
// configured root, or the working directory.
func watchRoot(args []string) (string, error) {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else if settings != nil && settings.Root != "" {
		dir = settings.Root
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

// daemonClient returns a client for the daemon that owns the configured root.
func daemonClient() (*socket.Client, string, error) {
	root, err := watchRoot(nil)
	if err != nil {
		return nil, "", err
	}
	sockPath := settings.Socket
	if sockPath == "" {
		sockPath = socket.SocketPath(root)
	}
	return socket.NewClient(sockPath), root, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.FileName+" or ~/.config/mediascout/config.yaml)")
	pf.String("root", "", "media root directory (default: working directory)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Duration("debounce", 0, "coalescing window for file changes (default 250ms)")
	pf.Int("scan-workers", 0, "directories scanned in parallel (default 4)")
	pf.String("socket", "", "daemon control socket (default: derived from root)")

	bindFlags(pf, map[string]string{
		config.KeyRoot:        "root",
		config.KeyLogLevel:    "log-level",
		config.KeyDebounce:    "debounce",
		config.KeyScanWorkers: "scan-workers",
		config.KeySocket:      "socket",
	})

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(retargetCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(configCmd)
}

// bindFlags binds config keys to flag names so flags take precedence over
// env and file values. Unknown flag names are programming errors.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind %s: %v", name, err))
		}
	}
}
