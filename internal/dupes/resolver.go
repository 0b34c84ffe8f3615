package dupes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/On-Jun9/MediaSort/internal/copier"
	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/internal/policy"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
)

const (
	OperationClean = "clean"
	OperationMove  = "move"
)

// Resolver deletes or relocates the later-seen file of each pending pair in
// a Session. The first-seen file of a pair is never touched.
type Resolver struct {
	fs       afero.Fs
	copier   *copier.Copier
	conflict *policy.ConflictResolver
	logger   *log.Logger
}

// NewResolver returns a Resolver. movePolicy decides what MoveTo does when
// the target folder already holds a file of the same name.
func NewResolver(fs afero.Fs, logger *log.Logger, movePolicy types.ConflictPolicy) *Resolver {
	if logger == nil {
		logger = log.Discard()
	}
	if movePolicy == "" {
		movePolicy = types.ConflictPolicySkip
	}
	return &Resolver{
		fs:       fs,
		copier:   copier.New(fs),
		conflict: policy.NewConflictResolver(fs, movePolicy),
		logger:   logger,
	}
}

// CleanNow deletes the later-seen path of every pair in s that is not marked
// not-duplicate. Failures are logged and counted; they do not stop the batch.
func (r *Resolver) CleanNow(ctx context.Context, s *Session) (types.ResolveSummary, error) {
	summary := types.ResolveSummary{SessionID: s.ID, Operation: OperationClean, Pairs: len(s.Pairs)}

	for _, pair := range s.Pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if s.IsNotDuplicate(pair) {
			summary.Skipped++
			r.logger.LogPath(types.CopyActionKept, pair.Second, pair.First, nil)
			continue
		}

		if err := r.removeLater(pair); err != nil {
			summary.Errors++
			r.logger.LogPath(types.CopyActionFailed, pair.Second, "", err)
			continue
		}
		summary.Deleted++
		r.logger.LogPath(types.CopyActionDeleted, pair.Second, "", nil)
	}

	return summary, nil
}

// ErrKeptMissing means the first-seen file of a pair is gone, so its
// later-seen file may be the last copy and is left in place.
var ErrKeptMissing = errors.New("kept file is missing")

func (r *Resolver) requireKept(pair types.DuplicatePair) error {
	info, err := r.fs.Stat(pair.First)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", pair.First, ErrKeptMissing)
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", pair.First, ErrKeptMissing)
	}
	return nil
}

func (r *Resolver) removeLater(pair types.DuplicatePair) error {
	if err := r.requireKept(pair); err != nil {
		return err
	}
	info, err := r.fs.Stat(pair.Second)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", pair.Second)
	}
	return r.fs.Remove(pair.Second)
}

// MoveTo relocates the later-seen path of every pending pair into target,
// keeping its base name. A name already taken in target is skipped and
// counted as a collision unless the resolver uses the rename policy.
func (r *Resolver) MoveTo(ctx context.Context, s *Session, target string) (types.ResolveSummary, error) {
	summary := types.ResolveSummary{SessionID: s.ID, Operation: OperationMove, Target: target, Pairs: len(s.Pairs)}

	if len(s.Pending()) > 0 {
		if err := r.fs.MkdirAll(target, 0755); err != nil {
			return summary, fmt.Errorf("create target folder: %w", err)
		}
	}

	for _, pair := range s.Pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if s.IsNotDuplicate(pair) {
			summary.Skipped++
			r.logger.LogPath(types.CopyActionKept, pair.Second, pair.First, nil)
			continue
		}

		dest := filepath.Join(target, filepath.Base(pair.Second))
		if err := r.requireKept(pair); err != nil {
			summary.Errors++
			r.logger.LogPath(types.CopyActionFailed, pair.Second, dest, err)
			continue
		}
		res, err := r.conflict.Resolve(dest)
		if err != nil {
			summary.Errors++
			r.logger.LogPath(types.CopyActionFailed, pair.Second, dest, err)
			continue
		}
		if res.Skip {
			summary.Collisions++
			r.logger.LogPath(types.CopyActionSkipped, pair.Second, dest, copier.ErrDestinationExists)
			continue
		}

		err = r.copier.Move(pair.Second, res.DestPath)
		if errors.Is(err, copier.ErrDestinationExists) {
			summary.Collisions++
			r.logger.LogPath(types.CopyActionSkipped, pair.Second, res.DestPath, err)
			continue
		}
		if err != nil {
			summary.Errors++
			r.logger.LogPath(types.CopyActionFailed, pair.Second, res.DestPath, err)
			continue
		}
		summary.Moved++
		r.logger.LogPath(types.CopyActionMoved, pair.Second, res.DestPath, nil)
	}

	return summary, nil
}
