package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corey/mediascout/internal/config"
	"github.com/corey/mediascout/internal/discovery"
	"github.com/corey/mediascout/internal/domain/media"
	"github.com/corey/mediascout/internal/logging"
	"github.com/corey/mediascout/internal/ports"
	"github.com/spf13/cobra"
)

var (
	watchJSON bool
	watchOnce bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Print media files as they appear and disappear",
	Long: "Scans dir (default: working directory), prints every media file found, then\n" +
		"keeps printing additions and removals until interrupted. With --once, exits\n" +
		"after the initial scan.",
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringSlice("ext", nil, "media extensions to match (default: video and audio)")
	f.StringSlice("exclude", nil, "doublestar patterns to skip, e.g. '**/Samples/**'")
	f.Bool("hidden", false, "include dot-files and dot-directories")
	f.BoolVar(&watchJSON, "json", false, "print events as JSON lines")
	f.BoolVar(&watchOnce, "once", false, "exit after the initial scan")
	bindFlags(f, map[string]string{
		config.KeyExtensions:    "ext",
		config.KeyExclude:       "exclude",
		config.KeyIncludeHidden: "hidden",
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := watchRoot(args)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(settings.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	matcher, err := media.NewMatcher(settings.MatcherOptions())
	if err != nil {
		return err
	}

	d := discovery.Shared()
	d.Configure(
		discovery.WithMatcher(matcher),
		discovery.WithDebounce(settings.Debounce),
		discovery.WithScanWorkers(settings.ScanWorkers),
		discovery.WithLogger(log),
	)

	writeErr := make(chan error, 1)
	cancel := d.SubscribeFunc(eventPrinter(cmd.OutOrStdout(), watchJSON, useColor(), log, writeErr))
	defer cancel()

	d.StartDiscovering(root)
	defer d.StopDiscovering()
	if err := d.Err(); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sigCh:
			return nil
		case err := <-writeErr:
			return fmt.Errorf("write events: %w", err)
		case <-ticker.C:
			switch d.State() {
			case discovery.Idle:
				if err := d.Err(); err != nil {
					return fmt.Errorf("watch %s: %w", root, err)
				}
				return nil
			case discovery.Watching:
				if watchOnce {
					return nil
				}
			}
		}
	}
}

// eventPrinter returns a subscriber that writes each event to out. The first
// write failure is logged and sent on failed; later events are dropped.
func eventPrinter(out io.Writer, asJSON, color bool, log *slog.Logger, failed chan<- error) func(ports.Event) {
	enc := json.NewEncoder(out)
	broken := false
	return func(ev ports.Event) {
		if broken {
			return
		}
		var err error
		if asJSON {
			err = enc.Encode(ev)
		} else {
			_, err = fmt.Fprint(out, formatEvent(ev, color))
		}
		if err == nil {
			return
		}
		broken = true
		log.Error("write event", "path", ev.Path, "error", err)
		select {
		case failed <- err:
		default:
		}
	}
}
