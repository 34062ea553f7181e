package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Directories never worth descending into on a media volume.
var ignoreDirs = map[string]bool{
	".git":                      true,
	".mediascout":               true,
	".Trash":                    true,
	".Trashes":                  true,
	".Spotlight-V100":           true,
	".fseventsd":                true,
	".AppleDouble":              true,
	"@eaDir":                    true,
	"$RECYCLE.BIN":              true,
	"System Volume Information": true,
	"lost+found":                true,
}

// MatcherOptions configures NewMatcher.
type MatcherOptions struct {
	// Extensions lists the accepted file extensions, with or without the
	// leading dot, case-insensitive. Empty means DefaultExtensions.
	Extensions []string

	// Exclude holds doublestar patterns. A file or directory is rejected
	// when a pattern matches its slash-separated absolute path or its base
	// name, e.g. "**/Samples/**" or "*.sample.mkv".
	Exclude []string

	// IncludeHidden admits dot-files and dot-directories.
	IncludeHidden bool
}

// Matcher implements ports.Matcher for media files. Safe for concurrent use.
type Matcher struct {
	exts          map[string]bool
	exclude       []string
	includeHidden bool
}

// NewMatcher validates opts and builds a Matcher.
func NewMatcher(opts MatcherOptions) (*Matcher, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	m := &Matcher{
		exts:          make(map[string]bool, len(exts)),
		includeHidden: opts.IncludeHidden,
	}
	for _, ext := range exts {
		ext = normalizeExt(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		m.exts[ext] = true
	}
	if len(m.exts) == 0 {
		return nil, fmt.Errorf("no usable extensions in %v", opts.Extensions)
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		m.exclude = append(m.exclude, p)
	}
	return m, nil
}

// DefaultMatcher accepts video and audio files, skipping hidden entries.
func DefaultMatcher() *Matcher {
	m, _ := NewMatcher(MatcherOptions{})
	return m
}

// Match reports whether path names an accepted media file.
func (m *Matcher) Match(path string) bool {
	base := filepath.Base(path)
	if !m.includeHidden && isHidden(base) {
		return false
	}
	if !m.exts[normalizeExt(filepath.Ext(base))] {
		return false
	}
	return !m.excluded(path, base)
}

// SkipDir reports whether a directory should not be scanned or watched.
func (m *Matcher) SkipDir(path string) bool {
	base := filepath.Base(path)
	if ignoreDirs[base] {
		return true
	}
	if !m.includeHidden && isHidden(base) {
		return true
	}
	return m.excluded(path, base)
}

// Extensions returns the accepted extensions (unordered).
func (m *Matcher) Extensions() []string {
	exts := make([]string, 0, len(m.exts))
	for ext := range m.exts {
		exts = append(exts, ext)
	}
	return exts
}

func (m *Matcher) excluded(path, base string) bool {
	slashed := filepath.ToSlash(path)
	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

func isHidden(base string) bool {
	return len(base) > 1 && base[0] == '.' && base != ".."
}
