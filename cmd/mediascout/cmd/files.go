package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	filesGlob string
	filesName string
	filesKind string
	filesJSON bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List cataloged media files",
	Long:  "Lists the daemon's catalog, optionally filtered by glob, name substring or kind.",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

func init() {
	f := filesCmd.Flags()
	f.StringVar(&filesGlob, "glob", "", "doublestar glob on base name or root-relative path, e.g. 'movies/**/*.mkv'")
	f.StringVar(&filesName, "name", "", "case-insensitive substring of the file name")
	f.StringVar(&filesKind, "kind", "", "video, audio, subtitle or playlist")
	f.BoolVar(&filesJSON, "json", false, "print the result as JSON")
}

func runFiles(cmd *cobra.Command, args []string) error {
	client, _, err := daemonClient()
	if err != nil {
		return err
	}
	if !client.Ping() {
		return fmt.Errorf("daemon is not running (start it with: mediascout daemon start)")
	}

	result, err := client.Files(socket.FilesParams{Glob: filesGlob, Name: filesName, Kind: filesKind})
	if err != nil {
		return err
	}
	if filesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatFiles(result))
	return nil
}
