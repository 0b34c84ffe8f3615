package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
)

const maxRenameAttempts = 10000

type ConflictResolver struct {
	fs     afero.Fs
	policy types.ConflictPolicy
}

func NewConflictResolver(fs afero.Fs, policy types.ConflictPolicy) *ConflictResolver {
	return &ConflictResolver{
		fs:     fs,
		policy: policy,
	}
}

// Resolution is the outcome of checking one destination path.
type Resolution struct {
	DestPath string
	Skip     bool
	Renamed  bool
}

// Resolve decides where a file headed for destPath should land. An existing
// file is never overwritten: it is skipped, or with the rename policy a free
// "name_N.ext" sibling is chosen.
func (c *ConflictResolver) Resolve(destPath string) (Resolution, error) {
	exists, err := c.exists(destPath)
	if err != nil {
		return Resolution{}, err
	}
	if !exists {
		return Resolution{DestPath: destPath}, nil
	}

	switch c.policy {
	case types.ConflictPolicyRename:
		newPath, err := c.generateUniqueName(destPath)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{DestPath: newPath, Renamed: true}, nil

	default:
		return Resolution{DestPath: destPath, Skip: true}, nil
	}
}

func (c *ConflictResolver) exists(path string) (bool, error) {
	_, err := c.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (c *ConflictResolver) generateUniqueName(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < maxRenameAttempts; i++ {
		newPath := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		exists, err := c.exists(newPath)
		if err != nil {
			return "", err
		}
		if !exists {
			return newPath, nil
		}
	}

	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxRenameAttempts)
}
