package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// TagDateTimeOriginal is the EXIF tag id of DateTimeOriginal.
const TagDateTimeOriginal uint16 = 0x9003

// WriteFile writes data to path on fs, creating parent directories, and sets
// the modification time when mtime is non-zero.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte, mtime time.Time) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if !mtime.IsZero() {
		if err := fs.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
}

// WriteSized writes size bytes of a repeating pattern to path.
func WriteSized(t testing.TB, fs afero.Fs, path string, size int) {
	t.Helper()

	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	WriteFile(t, fs, path, data, time.Time{})
}

// WriteEXIFImage writes a minimal little-endian TIFF stream whose IFD0
// carries a single ASCII tag. Image readers accept it regardless of the file
// extension, which lets tests name it "IMG_0001.jpg".
func WriteEXIFImage(t testing.TB, fs afero.Fs, path string, tagID uint16, value string, mtime time.Time) {
	t.Helper()
	WriteFile(t, fs, path, TIFFWithASCIITag(tagID, value), mtime)
}

// TIFFWithASCIITag builds the byte stream used by WriteEXIFImage.
func TIFFWithASCIITag(tagID uint16, value string) []byte {
	ascii := append([]byte(value), 0x00)
	count := len(ascii)
	dataOffset := uint32(26) // header(8) + count(2) + entry(12) + nextIFD(4)

	data := []byte{
		0x49, 0x49, 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // first IFD offset
		0x01, 0x00, // number of IFD entries
		byte(tagID & 0xFF), byte(tagID >> 8), // tag ID
		0x02, 0x00, // ASCII type
		byte(count & 0xFF), byte((count >> 8) & 0xFF), byte((count >> 16) & 0xFF), byte((count >> 24) & 0xFF), // count
		byte(dataOffset & 0xFF), byte((dataOffset >> 8) & 0xFF), byte((dataOffset >> 16) & 0xFF), byte((dataOffset >> 24) & 0xFF), // data offset
		0x00, 0x00, 0x00, 0x00, // next IFD offset
	}
	return append(data, ascii...)
}

// MinimalTIFF is a TIFF stream with an empty IFD0.
func MinimalTIFF() []byte {
	return []byte{
		0x49, 0x49, 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // first IFD offset
		0x00, 0x00, // number of IFD entries
		0x00, 0x00, 0x00, 0x00, // next IFD offset
	}
}

// Snapshot returns path -> content for every regular file below root.
func Snapshot(t testing.TB, fs afero.Fs, root string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	exists, err := afero.DirExists(fs, root)
	if err != nil {
		t.Fatalf("stat %s: %v", root, err)
	}
	if !exists {
		return out
	}
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			out[path+"/"] = ""
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		out[path] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return out
}
