package app

import (
	"os"

	"github.com/corey/mediascout/internal/domain/media"
	"github.com/corey/mediascout/internal/ports"
)

// record mirrors one discovery event into the catalog. It runs on the
// discovery worker, so a slow store delays later events but never drops them.
func (a *App) record(ev ports.Event) {
	switch ev.Kind {
	case ports.Added:
		info, err := os.Stat(ev.Path)
		if err != nil {
			// Gone already; the matching Removed follows.
			a.log.Debug("skip vanished file", "path", ev.Path, "error", err)
			return
		}
		f := ports.MediaFile{
			Path:         ev.Path,
			Root:         ev.Root,
			Kind:         string(media.KindOf(ev.Path)),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			DiscoveredAt: ev.Time,
		}
		if err := a.Library.PutFile(f); err != nil {
			a.log.Error("catalog put", "path", ev.Path, "error", err)
		}
	case ports.Removed:
		if err := a.Library.DeleteFile(ev.Root, ev.Path); err != nil {
			a.log.Error("catalog delete", "path", ev.Path, "error", err)
		}
	}
}
