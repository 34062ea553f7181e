package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/mediascout/internal/domain/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 4, cfg.ScanWorkers)
	assert.Equal(t, media.DefaultExtensions(), cfg.Media.Extensions)
	assert.Empty(t, cfg.Media.Exclude)
	assert.False(t, cfg.Media.IncludeHidden)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, 0, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /srv/media
debounce: 1s
scan_workers: 8
media:
  extensions: [mkv, .MP4]
  exclude: ["**/Samples/**"]
  include_hidden: true
http:
  enabled: false
  port: 19123
log:
  level: debug
`), 0644))

	v := New()
	used, err := ReadFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/media", cfg.Root)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, 8, cfg.ScanWorkers)
	assert.Equal(t, []string{"mkv", ".MP4"}, cfg.Media.Extensions)
	assert.Equal(t, []string{"**/Samples/**"}, cfg.Media.Exclude)
	assert.True(t, cfg.Media.IncludeHidden)
	assert.False(t, cfg.HTTP.Enabled)
	assert.Equal(t, 19123, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Log.MaxBackups)

	m, err := media.NewMatcher(cfg.MatcherOptions())
	require.NoError(t, err)
	assert.True(t, m.Match("/srv/media/a.mp4"))
	assert.False(t, m.Match("/srv/media/a.mp3"))
}

func TestReadFile_MissingExplicit(t *testing.T) {
	_, err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestReadFile_Candidate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	v := New()
	used, err := ReadFile(v, "")
	require.NoError(t, err)
	assert.Empty(t, used, "no file present")

	require.NoError(t, os.WriteFile(FileName, []byte("scan_workers: 2\n"), 0644))
	v = New()
	used, err = ReadFile(v, "")
	require.NoError(t, err)
	assert.Equal(t, FileName, used)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.ScanWorkers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nscan_workers: 2\n"), 0644))
	t.Setenv("MEDIASCOUT_LOG_LEVEL", "error")
	t.Setenv("MEDIASCOUT_DEBOUNCE", "75ms")
	t.Setenv("MEDIASCOUT_MEDIA_EXTENSIONS", "mkv,avi")

	v := New()
	_, err := ReadFile(v, path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 75*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 2, cfg.ScanWorkers)
	assert.Equal(t, []string{"mkv", "avi"}, cfg.Media.Extensions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
		want string
	}{
		{"zero debounce", KeyDebounce, 0, KeyDebounce},
		{"no workers", KeyScanWorkers, 0, KeyScanWorkers},
		{"bad port", KeyHTTPPort, 70000, KeyHTTPPort},
		{"bad level", KeyLogLevel, "loud", KeyLogLevel},
		{"bad exclude", KeyExclude, []string{"[oops"}, "invalid exclude pattern"},
		{"no extensions", KeyExtensions, []string{" ", ""}, "no usable extensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	want := Defaults()
	want.Root = "/srv/media"
	want.Debounce = 400 * time.Millisecond
	want.Media.Exclude = []string{"*.part"}

	require.NoError(t, WriteFile(path, want, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debounce: 400ms")
	assert.Contains(t, string(data), "# mediascout configuration")

	v := New()
	_, err = ReadFile(v, path)
	require.NoError(t, err)
	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteFile_NoClobber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

	err := WriteFile(path, Defaults(), false)
	require.Error(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "keep", string(data))

	require.NoError(t, WriteFile(path, Defaults(), true))
	data, _ = os.ReadFile(path)
	assert.NotEqual(t, "keep", string(data))
}
