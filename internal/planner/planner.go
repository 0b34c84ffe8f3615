package planner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

// DefaultUncategorizedDir receives files for which no date could be produced.
const DefaultUncategorizedDir = "uncategorized"

var templateAliases = map[string]types.StructureTemplate{
	"year":           types.TemplateYear,
	"yyyy":           types.TemplateYear,
	"year/month":     types.TemplateYearMonth,
	"yyyy/mmm":       types.TemplateYearMonth,
	"year/month/day": types.TemplateYearMonthDay,
	"yyyy/mmm/dd":    types.TemplateYearMonthDay,
}

// ParseTemplate maps a user-facing selector to a StructureTemplate.
// Both the long form ("year/month") and the picker form ("yyyy/MMM") are accepted.
func ParseTemplate(s string) (types.StructureTemplate, bool) {
	key := strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
	tmpl, ok := templateAliases[key]
	return tmpl, ok
}

// Templates lists the supported structure templates.
func Templates() []types.StructureTemplate {
	return []types.StructureTemplate{types.TemplateYear, types.TemplateYearMonth, types.TemplateYearMonthDay}
}

// BuildPath derives the destination directory for date under baseDir.
// An unknown template yields baseDir unchanged.
func BuildPath(baseDir string, date time.Time, tmpl types.StructureTemplate) string {
	switch tmpl {
	case types.TemplateYear:
		return filepath.Join(baseDir, date.Format("2006"))
	case types.TemplateYearMonth:
		return filepath.Join(baseDir, date.Format("2006"), date.Format("Jan"))
	case types.TemplateYearMonthDay:
		return filepath.Join(baseDir, date.Format("2006"), date.Format("Jan"), date.Format("02"))
	default:
		return baseDir
	}
}

type Planner struct {
	destRoot         string
	uncategorizedDir string
	template         types.StructureTemplate
}

func New(destRoot, uncategorizedDir string, tmpl types.StructureTemplate) *Planner {
	if uncategorizedDir == "" {
		uncategorizedDir = DefaultUncategorizedDir
	}
	return &Planner{
		destRoot:         destRoot,
		uncategorizedDir: uncategorizedDir,
		template:         tmpl,
	}
}

// Plan places entry under the destination root. Files without a date go to
// the uncategorized bucket.
func (p *Planner) Plan(entry types.MediaFile, date types.ClassificationDate) types.CopyTask {
	task := types.CopyTask{
		Source: entry,
		Date:   date,
	}

	if date.OK {
		task.DestDir = BuildPath(p.destRoot, date.Time, p.template)
	} else {
		task.DestDir = filepath.Join(p.destRoot, p.uncategorizedDir)
		task.Uncategorized = true
	}

	task.DestPath = filepath.Join(task.DestDir, filepath.Base(entry.Path))
	return task
}
