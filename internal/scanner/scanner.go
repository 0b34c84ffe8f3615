package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "jpe": true, "png": true, "gif": true, "bmp": true,
	"tif": true, "tiff": true, "heic": true, "heif": true, "webp": true,
	"raw": true, "arw": true, "cr2": true, "nef": true, "dng": true,
	"raf": true, "orf": true, "rw2": true, "srw": true,
}

var videoExtensions = map[string]bool{
	"mp4": true, "mov": true, "avi": true, "mkv": true, "mxf": true,
	"m4v": true, "webm": true, "wmv": true, "flv": true, "mts": true, "m2ts": true,
}

// ErrorHandler receives per-path errors that were skipped during a walk.
type ErrorHandler func(path string, err error)

// Scanner enumerates regular files below a root in lexical order.
// Symlinks are never followed, so a cyclic link cannot trap the walk.
type Scanner struct {
	fs         afero.Fs
	includeExt map[string]bool
	onError    ErrorHandler
}

// New returns a Scanner over fs. An empty extension list includes every file.
func New(fs afero.Fs, extensions []string) *Scanner {
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.TrimPrefix(strings.ToLower(ext), ".")] = true
	}
	return &Scanner{fs: fs, includeExt: extMap}
}

// OnError installs a handler for unreadable entries.
func (s *Scanner) OnError(h ErrorHandler) {
	s.onError = h
}

// Scan walks root and returns every included regular file. Unreadable
// entries below root are reported to the error handler and skipped; only an
// unusable root is returned as an error.
func (s *Scanner) Scan(root string) ([]types.MediaFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := s.fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", abs)
	}

	var entries []types.MediaFile

	err = afero.Walk(s.fs, abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == abs {
				return err
			}
			s.report(path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		entry := Describe(path, info)
		if len(s.includeExt) > 0 && !s.includeExt[entry.Extension] {
			return nil
		}

		entries = append(entries, entry)
		return nil
	})

	return entries, err
}

func (s *Scanner) report(path string, err error) {
	if s.onError != nil {
		s.onError(path, err)
	}
}

// Describe builds a MediaFile from a path and its file info.
func Describe(path string, info os.FileInfo) types.MediaFile {
	ext := Extension(path)
	return types.MediaFile{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Extension: ext,
		IsImage:   imageExtensions[ext],
		IsVideo:   videoExtensions[ext],
	}
}

// Extension returns the lowercase extension of path without the dot.
func Extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// IsImage reports whether the extension names an image-like format.
func IsImage(ext string) bool {
	return imageExtensions[ext]
}
