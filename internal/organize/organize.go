// Package organize copies a source tree into a date-structured destination.
package organize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/On-Jun9/MediaSort/internal/copier"
	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/internal/metadata"
	"github.com/On-Jun9/MediaSort/internal/planner"
	"github.com/On-Jun9/MediaSort/internal/policy"
	"github.com/On-Jun9/MediaSort/internal/scanner"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const noFilesMessage = "No files found to organize."

// Options describes one organize run.
type Options struct {
	RunID            string
	Source           string
	Dest             string
	Template         types.StructureTemplate
	UncategorizedDir string
	DryRun           bool
	HashVerify       bool
}

// Organizer runs the classification-and-placement engine. It is synchronous
// and assumes exclusive access to the source and destination trees.
type Organizer struct {
	fs       afero.Fs
	meta     *metadata.Resolver
	conflict *policy.ConflictResolver
	copier   *copier.Copier
	logger   *log.Logger
}

func New(fs afero.Fs, logger *log.Logger) *Organizer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Organizer{
		fs:       fs,
		meta:     metadata.New(fs),
		conflict: policy.NewConflictResolver(fs, types.ConflictPolicySkip),
		copier:   copier.New(fs),
		logger:   logger,
	}
}

type run struct {
	opts    Options
	planner *planner.Planner
	events  chan<- Event
	stats   types.RunStatistics
}

// Run organizes opts.Source into opts.Dest and returns the run statistics.
//
// Events are written to events in order and events is closed before Run
// returns; the caller must drain it until it is closed. A nil channel
// disables events. The returned error is non-nil only when the source cannot
// be walked or ctx is cancelled; per-file failures are counted in Errors.
func (o *Organizer) Run(ctx context.Context, opts Options, events chan<- Event) (types.RunStatistics, error) {
	if events != nil {
		defer close(events)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	r := &run{
		opts:    opts,
		planner: planner.New(opts.Dest, opts.UncategorizedDir, opts.Template),
		events:  events,
		stats: types.RunStatistics{
			RunID:     opts.RunID,
			DryRun:    opts.DryRun,
			StartTime: time.Now(),
		},
	}

	o.logger.Info(fmt.Sprintf("Starting organize run %s: '%s' -> '%s' (%s, dry-run=%t)",
		opts.RunID, opts.Source, opts.Dest, opts.Template, opts.DryRun))

	// Unreadable entries count as one file each in Total and Errors.
	var unreadable int
	sc := scanner.New(o.fs, nil)
	sc.OnError(func(path string, err error) {
		unreadable++
		r.stats.Errors++
		o.logger.Error("Error reading "+path, err)
		r.emit(Event{Type: EventLog, Path: path, Action: types.CopyActionFailed, Message: fmt.Sprintf("Error reading %s: %v", path, err)})
	})

	entries, err := sc.Scan(opts.Source)
	if err != nil {
		o.logger.Error("Failed to scan source", err)
		r.emit(Event{Type: EventError, Error: err.Error()})
		return r.finish(), fmt.Errorf("scan source: %w", err)
	}

	r.stats.Total = len(entries) + unreadable
	if len(entries) == 0 {
		o.logger.Info(noFilesMessage)
		r.emit(Event{Type: EventInfo, Message: noFilesMessage})
		stats := r.finish()
		r.emit(Event{Type: EventComplete, Stats: &stats})
		return stats, nil
	}

	o.logger.Info(fmt.Sprintf("Found %d files", len(entries)))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			o.logger.Warn(fmt.Sprintf("Run %s cancelled after %d of %d files", opts.RunID, i, len(entries)))
			r.emit(Event{Type: EventInfo, Message: fmt.Sprintf("Cancelled after %d of %d files.", i, len(entries))})
			stats := r.finish()
			r.emit(Event{Type: EventComplete, Stats: &stats})
			return stats, err
		}

		task := o.processFile(r, entry)
		o.logger.LogTask(task)
		r.emit(Event{Type: EventLog, Path: entry.Path, Action: task.Action, Message: taskMessage(task)})
		r.emit(Event{
			Type:    EventProgress,
			Percent: Percent(i+1, len(entries)),
			Current: i + 1,
			Total:   len(entries),
			Path:    entry.Path,
		})
	}

	stats := r.finish()
	o.logger.Info(fmt.Sprintf("Run %s finished: total=%d copied=%d planned=%d skipped=%d errors=%d uncategorized=%d",
		opts.RunID, stats.Total, stats.Copied, stats.Planned, stats.Skipped, stats.Errors, stats.Uncategorized))
	r.emit(Event{Type: EventComplete, Stats: &stats})
	return stats, nil
}

// processFile places one file and updates the run counters. It never panics
// into the caller: a failure of any step marks the task failed.
func (o *Organizer) processFile(r *run, entry types.MediaFile) (task types.CopyTask) {
	defer func() {
		if rec := recover(); rec != nil {
			task.Action = types.CopyActionFailed
			task.Error = fmt.Sprintf("internal error: %v", rec)
			r.stats.Errors++
		}
	}()

	date := o.meta.Resolve(entry)
	task = r.planner.Plan(entry, date)
	if task.Uncategorized {
		r.stats.Uncategorized++
	}

	res, err := o.conflict.Resolve(task.DestPath)
	if err != nil {
		return r.fail(task, err)
	}
	if res.Skip {
		task.Action = types.CopyActionSkipped
		r.stats.Skipped++
		return task
	}

	if r.opts.DryRun {
		task.Action = types.CopyActionPlanned
		r.stats.Planned++
		return task
	}

	if err := o.fs.MkdirAll(task.DestDir, 0755); err != nil {
		return r.fail(task, err)
	}

	copied, err := o.copier.Copy(entry.Path, task.DestPath)
	if errors.Is(err, copier.ErrDestinationExists) {
		task.Action = types.CopyActionSkipped
		r.stats.Skipped++
		return task
	}
	if err != nil {
		return r.fail(task, err)
	}

	if err := o.copier.Verify(task.DestPath, copied, r.opts.HashVerify); err != nil {
		o.fs.Remove(task.DestPath)
		return r.fail(task, err)
	}

	task.Action = types.CopyActionCopied
	r.stats.Copied++
	r.stats.BytesCopied += copied.Bytes
	return task
}

func (r *run) fail(task types.CopyTask, err error) types.CopyTask {
	task.Action = types.CopyActionFailed
	task.Error = err.Error()
	r.stats.Errors++
	return task
}

func (r *run) finish() types.RunStatistics {
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	return r.stats
}

func (r *run) emit(ev Event) {
	if r.events == nil {
		return
	}
	ev.RunID = r.opts.RunID
	r.events <- ev
}

func taskMessage(task types.CopyTask) string {
	switch task.Action {
	case types.CopyActionCopied:
		return fmt.Sprintf("Copied: %s -> %s", task.Source.Path, task.DestPath)
	case types.CopyActionPlanned:
		return fmt.Sprintf("[Dry Run] Would copy: %s -> %s", task.Source.Path, task.DestPath)
	case types.CopyActionSkipped:
		return fmt.Sprintf("Skipped (already exists): %s", task.DestPath)
	default:
		return fmt.Sprintf("Error: %s - %s", task.Source.Path, task.Error)
	}
}
