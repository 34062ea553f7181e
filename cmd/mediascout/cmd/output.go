package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// formatEvent renders one discovery event as a single line, the path
// prefixed with "+" when added or "-" when removed.
func formatEvent(ev ports.Event, color bool) string {
	sign, c := "+", colorGreen
	if ev.Kind == ports.Removed {
		sign, c = "-", colorRed
	}
	if !color {
		return fmt.Sprintf("%s %s\n", sign, ev.Path)
	}
	return fmt.Sprintf("%s%s%s %s\n", c, sign, colorReset, ev.Path)
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%smediascout daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:  %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  State:   %s\n", stateColor(h.State)))
	if h.Root != "" {
		sb.WriteString(fmt.Sprintf("  Root:    %s\n", h.Root))
	}
	if h.LastError != "" {
		sb.WriteString(fmt.Sprintf("  Error:   %s%s%s\n", colorYellow, h.LastError, colorReset))
	}
	sb.WriteString(fmt.Sprintf("  Files:   %d\n", h.FileCount))
	sb.WriteString(fmt.Sprintf("  Uptime:  %s\n", h.Uptime))
	return sb.String()
}

// formatStatus formats the result of a retarget or pause.
func formatStatus(st *socket.StatusResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  State:   %s\n", stateColor(st.State)))
	if st.Root != "" {
		sb.WriteString(fmt.Sprintf("  Root:    %s\n", st.Root))
	}
	if st.Error != "" {
		sb.WriteString(fmt.Sprintf("  Error:   %s%s%s\n", colorYellow, st.Error, colorReset))
	}
	return sb.String()
}

// formatFiles formats a FilesResult for terminal display.
func formatFiles(result *socket.FilesResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s%d files%s %s│ %s%s\n", colorBold, result.Count, colorReset, colorGray, result.Root, colorReset))
	for _, f := range result.Files {
		sb.WriteString(fmt.Sprintf("  %s%s%s", colorCyan, f.Path, colorReset))
		if f.Kind != "" {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorGray, f.Kind, colorReset))
		}
		sb.WriteString(fmt.Sprintf("  %s\n", formatSize(f.Size)))
	}
	return sb.String()
}

func stateColor(state string) string {
	switch state {
	case "watching":
		return colorGreen + state + colorReset
	case "scanning":
		return colorCyan + state + colorReset
	default:
		return colorYellow + state + colorReset
	}
}

// formatSize renders a byte count with a binary unit: 512B, 1.5K, 700.0M.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
