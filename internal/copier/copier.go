package copier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrDestinationExists is returned instead of overwriting an existing file.
var ErrDestinationExists = errors.New("destination already exists")

// renameFunc is swapped in tests to simulate EXDEV.
var renameFunc = func(fs afero.Fs, src, dst string) error {
	return fs.Rename(src, dst)
}

type Copier struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Copier {
	return &Copier{fs: fs}
}

// Result describes one finished copy.
type Result struct {
	// Bytes is the number of bytes written.
	Bytes int64
	// SHA256 is the hex digest of the bytes read from the source.
	SHA256 string
}

// Copy copies src to dst through a uniquely named hidden ".part" file in the
// destination directory, preserving the source mode and modification time.
// It refuses to replace an existing dst and never touches any other file
// already present next to it.
func (c *Copier) Copy(src, dst string) (Result, error) {
	if err := c.refuseExisting(dst); err != nil {
		return Result{}, err
	}

	srcFile, err := c.fs.Open(src)
	if err != nil {
		return Result{}, err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return Result{}, err
	}
	if !info.Mode().IsRegular() {
		return Result{}, fmt.Errorf("%s: not a regular file", src)
	}

	// TempFile opens with O_EXCL, so an existing file is never reused.
	tmp, err := afero.TempFile(c.fs, filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return Result{}, err
	}
	partPath := tmp.Name()

	res, err := c.fill(tmp, srcFile, info, partPath, dst)
	if err != nil {
		c.fs.Remove(partPath)
		return Result{}, err
	}
	return res, nil
}

func (c *Copier) fill(tmp afero.File, srcFile io.Reader, info os.FileInfo, partPath, dst string) (Result, error) {
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), srcFile)
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return Result{}, err
	}

	if err := c.fs.Chmod(partPath, info.Mode().Perm()); err != nil {
		return Result{}, err
	}
	if err := c.fs.Chtimes(partPath, info.ModTime(), info.ModTime()); err != nil {
		return Result{}, err
	}

	if err := c.refuseExisting(dst); err != nil {
		return Result{}, err
	}
	if err := c.fs.Rename(partPath, dst); err != nil {
		return Result{}, err
	}
	return Result{Bytes: n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

// Verify checks a finished copy at dst against res. The size is always
// compared; withHash also re-reads dst and compares its SHA-256.
func (c *Copier) Verify(dst string, res Result, withHash bool) error {
	info, err := c.fs.Stat(dst)
	if err != nil {
		return fmt.Errorf("destination file not found: %w", err)
	}
	if info.Size() != res.Bytes {
		return fmt.Errorf("size mismatch: expected %d, got %d", res.Bytes, info.Size())
	}
	if !withHash {
		return nil
	}

	f, err := c.fs.Open(dst)
	if err != nil {
		return fmt.Errorf("failed to hash destination: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash destination: %w", err)
	}
	if sum := hex.EncodeToString(h.Sum(nil)); sum != res.SHA256 {
		return fmt.Errorf("hash mismatch: src=%s, dest=%s", res.SHA256, sum)
	}
	return nil
}

// Move relocates src to dst. A rename across filesystems falls back to copy
// followed by removal of src. An existing dst is never replaced.
func (c *Copier) Move(src, dst string) error {
	if err := c.refuseExisting(dst); err != nil {
		return err
	}

	err := renameFunc(c.fs, src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}

	if _, err := c.Copy(src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := c.fs.Remove(src); err != nil {
		return fmt.Errorf("remove source after cross-device copy: %w", err)
	}
	return nil
}

func (c *Copier) refuseExisting(dst string) error {
	_, err := c.fs.Stat(dst)
	if err == nil {
		return fmt.Errorf("%s: %w", dst, ErrDestinationExists)
	}
	if !os.IsNotExist(err) {
		return err
	}
	return nil
}
