package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/corey/mediascout/internal/domain/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTree_WideAndDeep(t *testing.T) {
	root := t.TempDir()
	var want []string
	for i := 0; i < 8; i++ {
		dir := filepath.Join(root, fmt.Sprintf("d%d", i), "nested", "deeper")
		for j := 0; j < 3; j++ {
			p := filepath.Join(dir, fmt.Sprintf("f%d.mp4", j))
			writeFile(t, p)
			want = append(want, p)
		}
		writeFile(t, filepath.Join(dir, "skip.nfo"))
	}

	var mu sync.Mutex
	var dirs []string
	files, err := scanTree(context.Background(), root, media.DefaultMatcher(), 2, func(dir string) error {
		mu.Lock()
		dirs = append(dirs, dir)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, want, files)
	assert.IsIncreasing(t, files)
	assert.Len(t, dirs, 1+8*3)
}

func TestScanTree_RootAddFailureFails(t *testing.T) {
	root := t.TempDir()
	boom := errors.New("boom")

	_, err := scanTree(context.Background(), root, media.DefaultMatcher(), 2, func(string) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestScanTree_SubdirAddFailureSkipsSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.mkv"))
	writeFile(t, filepath.Join(root, "bad", "hidden.mkv"))

	files, err := scanTree(context.Background(), root, media.DefaultMatcher(), 2, func(dir string) error {
		if filepath.Base(dir) == "bad" {
			return errors.New("cannot watch")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "top.mkv")}, files)
}

func TestScanTree_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "a.mkv"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanTree(ctx, root, media.DefaultMatcher(), 2, func(string) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}
