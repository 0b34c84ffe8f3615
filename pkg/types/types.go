// Package types defines core data structures used across MediaSort modules.
package types

import (
	"time"
)

// MediaFile represents a scanned file with its filesystem attributes.
type MediaFile struct {
	// Path is the absolute path to the file.
	Path string
	// Name is the base filename.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Extension is the lowercase file extension without dot (e.g., "jpg", "mp4").
	Extension string
	// IsImage indicates an image-like file whose metadata may carry a capture date.
	IsImage bool
	// IsVideo indicates if this is a video file.
	IsVideo bool
}

// DateSource describes where a ClassificationDate came from.
type DateSource string

const (
	DateSourceEXIF    DateSource = "EXIF:DateTimeOriginal"
	DateSourceModTime DateSource = "ModTime"
	DateSourceNone    DateSource = ""
)

// ClassificationDate is the date used to place one MediaFile.
type ClassificationDate struct {
	// Time is the resolved date-time in local time. Zero when OK is false.
	Time time.Time
	// Source indicates where the date came from.
	Source DateSource
	// OK is false only when no date could be produced at all.
	OK bool
}

// StructureTemplate selects the shape of the destination directory tree.
type StructureTemplate string

const (
	TemplateYear         StructureTemplate = "year"
	TemplateYearMonth    StructureTemplate = "year/month"
	TemplateYearMonthDay StructureTemplate = "year/month/day"
)

// CopyTask represents a planned placement of one file.
type CopyTask struct {
	// Source is the source MediaFile.
	Source MediaFile
	// Date is the resolved classification date.
	Date ClassificationDate
	// DestDir is the destination directory (e.g., "DEST/2025/Dec/31" or "DEST/uncategorized").
	DestDir string
	// DestPath is the full destination file path.
	DestPath string
	// Uncategorized is true when the file was routed to the uncategorized bucket.
	Uncategorized bool
	// Action indicates what action was taken.
	Action CopyAction
	// Error contains error message if the task failed.
	Error string
}

// CopyAction represents the action taken for a file.
type CopyAction string

const (
	CopyActionCopied  CopyAction = "copied"
	CopyActionPlanned CopyAction = "would-copy"
	CopyActionSkipped CopyAction = "skipped"
	CopyActionFailed  CopyAction = "failed"
	CopyActionDeleted CopyAction = "deleted"
	CopyActionMoved   CopyAction = "moved"
	CopyActionKept    CopyAction = "kept"
)

// ConflictPolicy defines how to handle filename conflicts in a target folder.
type ConflictPolicy string

const (
	ConflictPolicySkip   ConflictPolicy = "skip"
	ConflictPolicyRename ConflictPolicy = "rename"
)

// RunStatistics contains counters for a completed organize run.
//
// Every file lands in exactly one of Copied, Planned, Skipped or Errors, so
// Copied+Planned+Skipped+Errors == Total. An entry the walk could not read
// counts once in Total and once in Errors. Uncategorized overlaps the buckets.
type RunStatistics struct {
	RunID         string        `json:"run_id"`
	Total         int           `json:"total"`
	Copied        int           `json:"copied"`
	Planned       int           `json:"planned"`
	Skipped       int           `json:"skipped"`
	Errors        int           `json:"errors"`
	Uncategorized int           `json:"uncategorized"`
	DryRun        bool          `json:"dry_run"`
	BytesCopied   int64         `json:"bytes_copied"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	Duration      time.Duration `json:"duration"`
}

// Accounted reports whether every file is in exactly one outcome bucket.
func (s RunStatistics) Accounted() bool {
	return s.Copied+s.Planned+s.Skipped+s.Errors == s.Total
}

// Fingerprint is the (base name, size) key used to flag duplicate candidates.
type Fingerprint struct {
	Name string
	Size int64
}

// DuplicatePair is an ordered (first-seen, later-seen) pair from one scan.
// First is always the retained file.
type DuplicatePair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// ResolveSummary contains counters for a clean or move batch.
type ResolveSummary struct {
	// SessionID identifies the duplicate review session.
	SessionID string `json:"session_id"`
	// Operation is "clean" or "move".
	Operation string `json:"operation"`
	// Target is the move destination folder; empty for clean.
	Target string `json:"target,omitempty"`
	// Pairs is the number of pairs considered.
	Pairs int `json:"pairs"`
	// Deleted counts removed later-seen files (clean).
	Deleted int `json:"deleted"`
	// Moved counts relocated later-seen files (move).
	Moved int `json:"moved"`
	// Skipped counts pairs left alone because they are marked not-duplicate.
	Skipped int `json:"skipped"`
	// Collisions counts moves refused because the target name was taken.
	Collisions int `json:"collisions"`
	// Errors counts per-file delete/move failures.
	Errors int `json:"errors"`
}

// HistoryKind identifies the operation recorded in run history.
type HistoryKind string

const (
	HistoryKindOrganize HistoryKind = "organize"
	HistoryKindClean    HistoryKind = "clean"
	HistoryKindMove     HistoryKind = "move"
)

// HistoryEntry represents a single recorded run.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Kind      HistoryKind     `json:"kind"`
	Source    string          `json:"source"`
	Dest      string          `json:"dest,omitempty"`
	Stats     *RunStatistics  `json:"stats,omitempty"`
	Resolve   *ResolveSummary `json:"resolve,omitempty"`
	Cancelled bool            `json:"cancelled"`
	CreatedAt time.Time       `json:"created_at"`
}
