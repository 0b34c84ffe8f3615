package organize

import "github.com/On-Jun9/MediaSort/pkg/types"

type EventType string

const (
	// EventInfo carries an informational message such as an empty source.
	EventInfo EventType = "info"
	// EventLog carries one human-readable per-file log line.
	EventLog EventType = "log"
	// EventProgress carries the integer percentage of processed files.
	EventProgress EventType = "progress"
	// EventComplete is always the last event of a run and carries statistics.
	EventComplete EventType = "complete"
	// EventError reports a run that could not start.
	EventError EventType = "error"
)

type Event struct {
	Type    EventType            `json:"type"`
	RunID   string               `json:"run_id,omitempty"`
	Message string               `json:"message,omitempty"`
	Percent int                  `json:"percent,omitempty"`
	Current int                  `json:"current,omitempty"`
	Total   int                  `json:"total,omitempty"`
	Path    string               `json:"path,omitempty"`
	Action  types.CopyAction     `json:"action,omitempty"`
	Stats   *types.RunStatistics `json:"stats,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Percent returns done/total as an integer percentage. It reaches 100 only
// when done == total.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}
