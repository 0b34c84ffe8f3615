package metadata

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// CaptureLayout is the EXIF DateTimeOriginal format (YYYY:MM:DD HH:MM:SS).
const CaptureLayout = "2006:01:02 15:04:05"

var ErrNoCaptureTime = errors.New("no capture time found in EXIF")

type EXIFExtractor struct {
	fs afero.Fs
}

func NewEXIFExtractor(fs afero.Fs) *EXIFExtractor {
	return &EXIFExtractor{fs: fs}
}

// Extract reads DateTimeOriginal from the file's embedded EXIF block and
// parses it as local time. Decoder panics on corrupt input surface as errors.
func (e *EXIFExtractor) Extract(entry types.MediaFile) (t time.Time, err error) {
	f, err := e.fs.Open(entry.Path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			t = time.Time{}
			err = fmt.Errorf("corrupt EXIF data: %v", r)
		}
	}()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("no EXIF data: %w", err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, ErrNoCaptureTime
	}
	strVal, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("DateTimeOriginal is not text: %w", err)
	}

	return ParseCaptureTime(strVal)
}

// ParseCaptureTime parses an EXIF date string such as "2023:06:15 10:20:30".
func ParseCaptureTime(value string) (time.Time, error) {
	value = strings.TrimSpace(strings.TrimRight(value, "\x00"))
	t, err := time.ParseInLocation(CaptureLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid capture time %q: %w", value, err)
	}
	return t, nil
}
