package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/mediascout/internal/adapters/socket"
	"github.com/corey/mediascout/internal/config"
	"github.com/corey/mediascout/internal/discovery"
	"github.com/corey/mediascout/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, root string) *App {
	t.Helper()
	settings := config.Defaults()
	settings.Debounce = 20 * time.Millisecond
	settings.HTTP.Enabled = false
	settings.Socket = filepath.Join(t.TempDir(), "d.sock")

	a, err := New(Config{
		Root:       root,
		Settings:   settings,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Discoverer: discovery.New(),
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() { a.Stop() })
	return a
}

func writeMedia(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
}

func catalogPaths(t *testing.T, a *App) []string {
	t.Helper()
	_, files, err := a.LibraryFiles()
	require.NoError(t, err)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func waitCatalog(t *testing.T, a *App, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, catalogPaths(t, a))
	}, 3*time.Second, 20*time.Millisecond, "catalog: %v", catalogPaths(t, a))
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_BadMatcherSettings(t *testing.T) {
	settings := config.Defaults()
	settings.Media.Exclude = []string{"[bad"}
	_, err := New(Config{Root: t.TempDir(), Settings: settings, Discoverer: discovery.New()})
	assert.Error(t, err)
}

func TestApp_BaselineFillsCatalog(t *testing.T) {
	root := t.TempDir()
	movie := filepath.Join(root, "movies", "heat.mkv")
	song := filepath.Join(root, "music", "track.flac")
	writeMedia(t, movie)
	writeMedia(t, song)
	writeMedia(t, filepath.Join(root, "notes.txt"))

	a := newTestApp(t, root)
	waitCatalog(t, a, movie, song)

	_, files, err := a.LibraryFiles()
	require.NoError(t, err)
	byPath := map[string]ports.MediaFile{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.Equal(t, "video", byPath[movie].Kind)
	assert.Equal(t, "audio", byPath[song].Kind)
	assert.Equal(t, int64(4), byPath[movie].Size)
	assert.Equal(t, root, byPath[movie].Root)
	assert.False(t, byPath[movie].DiscoveredAt.IsZero())

	n, err := a.LibraryCount()
	require.NoError(t, err)
	assert.Equal(t, len(files), n)

	// The state directory lives under the root but is never cataloged.
	_, err = os.Stat(a.Paths.DB)
	assert.NoError(t, err)
}

func TestApp_IncrementalChanges(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)
	require.Eventually(t, func() bool {
		return a.Discoverer.State() == discovery.Watching
	}, 3*time.Second, 10*time.Millisecond)

	clip := filepath.Join(root, "clip.mp4")
	writeMedia(t, clip)
	waitCatalog(t, a, clip)

	require.NoError(t, os.Remove(clip))
	waitCatalog(t, a)
}

func TestApp_RetargetAndPause(t *testing.T) {
	home := t.TempDir()
	other := t.TempDir()
	homeFile := filepath.Join(home, "a.mkv")
	otherFile := filepath.Join(other, "b.mkv")
	writeMedia(t, homeFile)
	writeMedia(t, otherFile)

	a := newTestApp(t, home)
	waitCatalog(t, a, homeFile)

	st := a.StartWatch(other)
	assert.Empty(t, st.Error)
	assert.Equal(t, other, st.Root)
	waitCatalog(t, a, otherFile)
	root, _, err := a.LibraryFiles()
	require.NoError(t, err)
	assert.Equal(t, other, root)

	st = a.StopWatch()
	assert.Equal(t, "idle", st.State)
	assert.Empty(t, st.Root)

	// Paused: the catalog is kept but no longer follows the disk.
	writeMedia(t, filepath.Join(other, "c.mkv"))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{otherFile}, catalogPaths(t, a))
}

func TestApp_RestartRebuildsCatalog(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.mkv")
	gone := filepath.Join(root, "gone.mkv")
	writeMedia(t, keep)
	writeMedia(t, gone)

	a := newTestApp(t, root)
	waitCatalog(t, a, gone, keep)

	a.StopWatch()
	require.NoError(t, os.Remove(gone))
	a.StartWatch(root)
	waitCatalog(t, a, keep)
}

func TestApp_StartInvalidPathReportsError(t *testing.T) {
	a := newTestApp(t, t.TempDir())

	st := a.StartWatch(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, "idle", st.State)
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, st.Error, a.Status().Error)
}

func TestApp_SocketControl(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.avi")
	writeMedia(t, file)

	a := newTestApp(t, root)
	waitCatalog(t, a, file)

	client := socket.NewClient(a.Server.Addr())
	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.FileCount)
	assert.Equal(t, root, health.Root)

	files, err := client.Files(socket.FilesParams{Glob: "*.avi"})
	require.NoError(t, err)
	require.Equal(t, 1, files.Count)
	assert.Equal(t, file, files.Files[0].Path)

	st, err := client.Stop()
	require.NoError(t, err)
	assert.Equal(t, "idle", st.State)
}

func TestApp_EventFeed(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)
	require.Eventually(t, func() bool {
		return a.Discoverer.State() == discovery.Watching
	}, 3*time.Second, 10*time.Millisecond)

	events, cancel := a.openFeed(4)
	defer cancel()

	file := filepath.Join(root, "live.mkv")
	writeMedia(t, file)

	select {
	case ev := <-events:
		assert.Equal(t, ports.Added, ev.Kind)
		assert.Equal(t, file, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event on feed")
	}
}
