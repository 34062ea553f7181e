// Package socket implements a JSON-over-Unix-socket protocol for the mediascout daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/corey/mediascout/internal/ports"
)

// SocketPath returns the Unix socket path for a given watch root.
// Format: $TMPDIR/mediascout-{first12hex}.sock
func SocketPath(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), fmt.Sprintf("mediascout-%x.sock", h[:6]))
}

// Method names for the protocol.
const (
	MethodHealth   = "health"
	MethodStart    = "start"
	MethodStop     = "stop"
	MethodFiles    = "files"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status    string `json:"status"`
	State     string `json:"state"` // idle, scanning, watching
	Root      string `json:"root,omitempty"`
	LastError string `json:"last_error,omitempty"`
	FileCount int    `json:"file_count"`
	Uptime    string `json:"uptime"`
}

// StartParams is the params for a start request.
type StartParams struct {
	Path string `json:"path"`
}

// StatusResult is the result of start and stop requests: the discoverer
// state right after the call. Start failures show up as state "idle" with
// Error set.
type StatusResult struct {
	State string `json:"state"`
	Root  string `json:"root,omitempty"`
	Error string `json:"error,omitempty"`
}

// FilesParams is the params for a files request.
type FilesParams struct {
	Glob string `json:"glob,omitempty"` // doublestar glob on base name or root-relative path
	Name string `json:"name,omitempty"` // case-insensitive substring of the base name
	Kind string `json:"kind,omitempty"` // video, audio, subtitle, playlist
}

// FilesResult is the result of a files request.
type FilesResult struct {
	Root  string     `json:"root"`
	Files []FileInfo `json:"files"`
	Count int        `json:"count"`
}

// FileInfo describes a single catalog entry.
type FileInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind,omitempty"`
	Size int64  `json:"size"`
}

// FilterFiles applies params to catalog entries of root. All given filters
// must match. Shared by the socket and HTTP servers.
func FilterFiles(root string, files []ports.MediaFile, params FilesParams) []FileInfo {
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		base := filepath.Base(f.Path)
		if params.Glob != "" {
			rel, err := filepath.Rel(root, f.Path)
			if err != nil {
				rel = f.Path
			}
			okBase, _ := doublestar.Match(params.Glob, base)
			okRel, _ := doublestar.Match(params.Glob, filepath.ToSlash(rel))
			if !okBase && !okRel {
				continue
			}
		}
		if params.Name != "" && !strings.Contains(strings.ToLower(base), strings.ToLower(params.Name)) {
			continue
		}
		if params.Kind != "" && !strings.EqualFold(params.Kind, f.Kind) {
			continue
		}
		out = append(out, FileInfo{Path: f.Path, Kind: f.Kind, Size: f.Size})
	}
	return out
}
