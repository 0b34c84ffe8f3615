// Package dupes finds duplicate candidates by (name, size) and resolves them
// by deleting or relocating the later-seen copy.
package dupes

import (
	"fmt"

	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/internal/scanner"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
)

// Scanner groups the files of one folder into duplicate pairs.
type Scanner struct {
	fs     afero.Fs
	logger *log.Logger
}

func NewScanner(fs afero.Fs, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Discard()
	}
	return &Scanner{fs: fs, logger: logger}
}

// FingerprintOf returns the duplicate key of a scanned file.
func FingerprintOf(entry types.MediaFile) types.Fingerprint {
	return types.Fingerprint{Name: entry.Name, Size: entry.Size}
}

// Scan walks folder in lexical order and returns one (first, later) pair for
// every file whose fingerprint was already seen. The first path recorded for
// a fingerprint is never replaced, so three matching files A, B, C yield
// (A, B) and (A, C). Unreadable entries are logged and left out.
func (s *Scanner) Scan(folder string) ([]types.DuplicatePair, error) {
	sc := scanner.New(s.fs, nil)
	sc.OnError(func(path string, err error) {
		s.logger.Error("Error reading "+path, err)
	})

	entries, err := sc.Scan(folder)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", folder, err)
	}

	firstSeen := make(map[types.Fingerprint]string, len(entries))
	var pairs []types.DuplicatePair
	for _, entry := range entries {
		fp := FingerprintOf(entry)
		first, ok := firstSeen[fp]
		if !ok {
			firstSeen[fp] = entry.Path
			continue
		}
		pairs = append(pairs, types.DuplicatePair{First: first, Second: entry.Path})
	}

	s.logger.Info(fmt.Sprintf("Duplicate scan of '%s': %d files, %d pairs", folder, len(entries), len(pairs)))
	return pairs, nil
}
