package metadata

import (
	"github.com/On-Jun9/MediaSort/internal/scanner"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
)

// Resolver produces the ClassificationDate for a file: the EXIF capture date
// for image-like files when present, else the modification time.
type Resolver struct {
	fs   afero.Fs
	exif *EXIFExtractor
}

func New(fs afero.Fs) *Resolver {
	return &Resolver{
		fs:   fs,
		exif: NewEXIFExtractor(fs),
	}
}

// Resolve never fails. Metadata errors fall back to entry.ModTime; only an
// entry without a modification time yields OK == false.
func (r *Resolver) Resolve(entry types.MediaFile) types.ClassificationDate {
	if entry.IsImage {
		if t, err := r.exif.Extract(entry); err == nil {
			return types.ClassificationDate{Time: t, Source: types.DateSourceEXIF, OK: true}
		}
	}

	if entry.ModTime.IsZero() {
		return types.ClassificationDate{Source: types.DateSourceNone}
	}
	return types.ClassificationDate{
		Time:   entry.ModTime.Local(),
		Source: types.DateSourceModTime,
		OK:     true,
	}
}

// ResolvePath stats path and resolves its date.
func (r *Resolver) ResolvePath(path string) types.ClassificationDate {
	info, err := r.fs.Stat(path)
	if err != nil {
		return types.ClassificationDate{Source: types.DateSourceNone}
	}
	return r.Resolve(scanner.Describe(path, info))
}
