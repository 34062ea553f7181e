package cmd

import (
	"testing"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestFormatEvent(t *testing.T) {
	added := ports.Event{Kind: ports.Added, Path: "/m/a.mkv"}
	removed := ports.Event{Kind: ports.Removed, Path: "/m/a.mkv"}

	assert.Equal(t, "+ /m/a.mkv\n", formatEvent(added, false))
	assert.Equal(t, "- /m/a.mkv\n", formatEvent(removed, false))
	assert.Contains(t, formatEvent(added, true), colorGreen)
	assert.Contains(t, formatEvent(removed, true), colorRed)
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:                 "0B",
		512:               "512B",
		1536:              "1.5K",
		700 * 1024 * 1024: "700.0M",
		3 << 40:           "3.0T",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatSize(in), "size %d", in)
	}
}

func TestFormatHealth(t *testing.T) {
	out := formatHealth(&socket.HealthResult{
		Status:    "ok",
		State:     "idle",
		LastError: "invalid path",
		FileCount: 12,
		Uptime:    "3s",
	})
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "idle")
	assert.Contains(t, out, "invalid path")
	assert.Contains(t, out, "Files:   12")
	assert.NotContains(t, out, "Root:")
}

func TestFormatFiles(t *testing.T) {
	out := formatFiles(&socket.FilesResult{
		Root:  "/m",
		Count: 1,
		Files: []socket.FileInfo{{Path: "/m/a.mkv", Kind: "video", Size: 2048}},
	})
	assert.Contains(t, out, "1 files")
	assert.Contains(t, out, "/m/a.mkv")
	assert.Contains(t, out, "video")
	assert.Contains(t, out, "2.0K")
}

func TestWatchRoot(t *testing.T) {
	dir := t.TempDir()
	got, err := watchRoot([]string{dir})
	assert.NoError(t, err)
	assert.Equal(t, dir, got)

	t.Chdir(dir)
	saved := settings
	settings = nil
	defer func() { settings = saved }()
	got, err = watchRoot(nil)
	assert.NoError(t, err)
	assert.Equal(t, dir, got)
}
