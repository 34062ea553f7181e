// Package media knows which files count as media and builds the matcher the
// discoverer uses to filter paths.
package media

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a media file by extension.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
	KindPlaylist Kind = "playlist"
	KindUnknown  Kind = ""
)

// Extension catalog, lower-case without the leading dot.
var catalog = map[string]Kind{
	// video
	"3g2": KindVideo, "3gp": KindVideo, "3gp2": KindVideo, "3gpp": KindVideo,
	"amv": KindVideo, "asf": KindVideo, "avi": KindVideo, "divx": KindVideo,
	"dv": KindVideo, "f4v": KindVideo, "flv": KindVideo, "gxf": KindVideo,
	"m1v": KindVideo, "m2t": KindVideo, "m2ts": KindVideo, "m2v": KindVideo,
	"m4v": KindVideo, "mkv": KindVideo, "mov": KindVideo, "mp4": KindVideo,
	"mp4v": KindVideo, "mpe": KindVideo, "mpeg": KindVideo, "mpeg1": KindVideo,
	"mpeg2": KindVideo, "mpeg4": KindVideo, "mpg": KindVideo, "mpv2": KindVideo,
	"mts": KindVideo, "mxf": KindVideo, "nsv": KindVideo, "nuv": KindVideo,
	"ogm": KindVideo, "ogv": KindVideo, "ogx": KindVideo, "ps": KindVideo,
	"rec": KindVideo, "rm": KindVideo, "rmvb": KindVideo, "tod": KindVideo,
	"ts": KindVideo, "tts": KindVideo, "vob": KindVideo, "vro": KindVideo,
	"webm": KindVideo, "wm": KindVideo, "wmv": KindVideo, "wtv": KindVideo,

	// audio
	"aac": KindAudio, "ac3": KindAudio, "aif": KindAudio, "aifc": KindAudio,
	"aiff": KindAudio, "alac": KindAudio, "amr": KindAudio, "ape": KindAudio,
	"caf": KindAudio, "dts": KindAudio, "flac": KindAudio, "it": KindAudio,
	"m4a": KindAudio, "m4b": KindAudio, "m4p": KindAudio, "mka": KindAudio,
	"mod": KindAudio, "mp1": KindAudio, "mp2": KindAudio, "mp3": KindAudio,
	"mpa": KindAudio, "mpc": KindAudio, "mpga": KindAudio, "oga": KindAudio,
	"ogg": KindAudio, "oma": KindAudio, "opus": KindAudio, "s3m": KindAudio,
	"spx": KindAudio, "tta": KindAudio, "voc": KindAudio, "w64": KindAudio,
	"wav": KindAudio, "wma": KindAudio, "wv": KindAudio, "xm": KindAudio,

	// subtitles
	"ass": KindSubtitle, "idx": KindSubtitle, "smi": KindSubtitle,
	"srt": KindSubtitle, "ssa": KindSubtitle, "sub": KindSubtitle,
	"vtt": KindSubtitle,

	// playlists
	"m3u": KindPlaylist, "m3u8": KindPlaylist, "pls": KindPlaylist,
	"xspf": KindPlaylist,
}

// KindOf returns the media kind for path based on its extension.
func KindOf(path string) Kind {
	return catalog[normalizeExt(filepath.Ext(path))]
}

// DefaultExtensions returns the extensions discovered when none are
// configured: every video and audio extension in the catalog.
func DefaultExtensions() []string {
	var exts []string
	for ext, k := range catalog {
		if k == KindVideo || k == KindAudio {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// ExtensionsOf returns every catalog extension of the given kinds.
func ExtensionsOf(kinds ...Kind) []string {
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var exts []string
	for ext, k := range catalog {
		if want[k] {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// normalizeExt lower-cases ext and strips a leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
