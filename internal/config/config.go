package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/On-Jun9/MediaSort/internal/planner"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const stateDirName = ".mediasort"

type Config struct {
	Source           string                  `yaml:"source" toml:"source" json:"source"`
	Dest             string                  `yaml:"dest" toml:"dest" json:"dest"`
	Structure        types.StructureTemplate `yaml:"structure" toml:"structure" json:"structure"`
	DryRun           bool                    `yaml:"dry_run" toml:"dry_run" json:"dry_run"`
	HashVerify       bool                    `yaml:"hash_verify" toml:"hash_verify" json:"hash_verify"`
	UncategorizedDir string                  `yaml:"uncategorized_dir" toml:"uncategorized_dir" json:"uncategorized_dir"`
	LogFile          string                  `yaml:"log_file" toml:"log_file" json:"log_file"`
	LogJSON          bool                    `yaml:"log_json" toml:"log_json" json:"log_json"`
	HistoryFile      string                  `yaml:"history_file" toml:"history_file" json:"history_file"`
	LockFile         string                  `yaml:"lock_file" toml:"lock_file" json:"lock_file"`
	MoveConflict     types.ConflictPolicy    `yaml:"move_conflict" toml:"move_conflict" json:"move_conflict"`
}

// StateDir is where MediaSort keeps its log, history, lock and user data.
func StateDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, stateDirName)
}

func DefaultConfig() *Config {
	stateDir := StateDir()

	return &Config{
		Structure:        types.TemplateYearMonth,
		UncategorizedDir: planner.DefaultUncategorizedDir,
		LogFile:          filepath.Join(stateDir, "mediasort.log"),
		HistoryFile:      filepath.Join(stateDir, "history.db"),
		LockFile:         filepath.Join(stateDir, "mediasort.lock"),
		MoveConflict:     types.ConflictPolicySkip,
	}
}

// LoadFromFile reads a YAML file, or a TOML file when path ends in ".toml",
// on top of DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks an organize configuration and fills empty settings.
func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if c.Dest == "" {
		return &ValidationError{Field: "dest", Message: "destination path is required"}
	}
	return c.Normalize()
}

// Normalize fills empty settings with defaults and canonicalizes the
// structure template and move conflict policy. It does not require paths.
func (c *Config) Normalize() error {
	if c.Structure == "" {
		c.Structure = types.TemplateYearMonth
	} else {
		tmpl, ok := planner.ParseTemplate(string(c.Structure))
		if !ok {
			return &ValidationError{
				Field:   "structure",
				Message: fmt.Sprintf("unknown structure %q (use year, year/month or year/month/day)", c.Structure),
			}
		}
		c.Structure = tmpl
	}

	switch c.MoveConflict {
	case "":
		c.MoveConflict = types.ConflictPolicySkip
	case types.ConflictPolicySkip, types.ConflictPolicyRename:
	default:
		return &ValidationError{
			Field:   "move_conflict",
			Message: fmt.Sprintf("unknown policy %q (use skip or rename)", c.MoveConflict),
		}
	}

	stateDir := StateDir()

	if c.LogFile == "" {
		c.LogFile = filepath.Join(stateDir, "mediasort.log")
	}
	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(stateDir, "history.db")
	}
	if c.LockFile == "" {
		c.LockFile = filepath.Join(stateDir, "mediasort.lock")
	}
	if c.UncategorizedDir == "" {
		c.UncategorizedDir = planner.DefaultUncategorizedDir
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
