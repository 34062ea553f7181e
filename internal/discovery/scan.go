package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/corey/mediascout/internal/ports"
	"golang.org/x/sync/errgroup"
)

// scanTree walks root, registering every non-skipped directory through
// addDir and returning the matching regular files sorted by path.
// Directory reads fan out over at most workers goroutines. Unreadable
// subdirectories are skipped; an unreadable root or an exhausted backend
// fails the scan. Symlinks are not followed.
func scanTree(ctx context.Context, root string, m ports.Matcher, workers int, addDir func(string) error) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu    sync.Mutex
		files []string
	)

	var visit func(dir string) error
	visit = func(dir string) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if err := addDir(dir); err != nil {
			if dir == root || isExhaustion(err) {
				return err
			}
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return fmt.Errorf("read %s: %w", dir, err)
			}
			return nil
		}

		var local []string
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				if m.SkipDir(p) {
					continue
				}
				// Run inline when the pool is full so a deep tree cannot
				// block every worker on g.Go.
				if !g.TryGo(func() error { return visit(p) }) {
					if err := visit(p); err != nil {
						return err
					}
				}
			case e.Type().IsRegular():
				if m.Match(p) {
					local = append(local, p)
				}
			}
		}
		if len(local) > 0 {
			mu.Lock()
			files = append(files, local...)
			mu.Unlock()
		}
		return nil
	}

	rootErr := visit(root)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rootErr != nil {
		return nil, rootErr
	}

	sort.Strings(files)
	return files, nil
}
