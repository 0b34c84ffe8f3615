package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	settingsFile    = "settings.json"
	pathHistoryFile = "path-history.json"

	maxRecentPaths = 20
)

// PathHistory stores recently used folders for the web UI's pickers.
type PathHistory struct {
	Source    []string  `json:"source"`
	Dest      []string  `json:"dest"`
	Scan      []string  `json:"scan"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserDataManager persists UI state (last used settings, path history) as
// JSON files in a data directory.
type UserDataManager struct {
	dataDir string
}

// validatePath rejects paths carrying HTML or script patterns, since they are
// echoed back into the web UI. Plain <> are valid Unix filename characters.
func validatePath(path string) error {
	if path == "" {
		return nil
	}
	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	lowerPath := strings.ToLower(path)
	for _, pattern := range []string{
		"<script", "</script", "<iframe", "<object", "<embed", "<img",
		"javascript:", "onerror=", "onload=", "onclick=", "onmouseover=",
	} {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains potentially malicious pattern: %s", pattern)
		}
	}

	return nil
}

// NewUserDataManager creates the data directory if needed. An empty dataDir
// means StateDir().
func NewUserDataManager(dataDir string) (*UserDataManager, error) {
	if dataDir == "" {
		dataDir = StateDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &UserDataManager{dataDir: dataDir}, nil
}

// SaveSettings stores cfg as the last used settings.
func (m *UserDataManager) SaveSettings(cfg *Config) error {
	for field, path := range map[string]string{"source": cfg.Source, "dest": cfg.Dest} {
		if err := validatePath(path); err != nil {
			return &ValidationError{Field: field, Message: fmt.Sprintf("invalid %s path: %v", field, err)}
		}
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	return m.writeJSON(settingsFile, cfg)
}

// LoadSettings returns the last saved settings, or DefaultConfig when none
// were saved yet.
func (m *UserDataManager) LoadSettings() (*Config, error) {
	cfg := DefaultConfig()
	found, err := m.readJSON(settingsFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !found {
		return DefaultConfig(), nil
	}
	return cfg, nil
}

func (m *UserDataManager) SavePathHistory(history *PathHistory) error {
	for _, paths := range [][]string{history.Source, history.Dest, history.Scan} {
		for _, path := range paths {
			if err := validatePath(path); err != nil {
				return &ValidationError{
					Field:   "path_history",
					Message: fmt.Sprintf("invalid path in history: %v", err),
				}
			}
		}
	}

	history.UpdatedAt = time.Now()
	return m.writeJSON(pathHistoryFile, history)
}

// LoadPathHistory returns empty lists when no history was saved yet.
func (m *UserDataManager) LoadPathHistory() (*PathHistory, error) {
	history := &PathHistory{Source: []string{}, Dest: []string{}, Scan: []string{}}
	if _, err := m.readJSON(pathHistoryFile, history); err != nil {
		return nil, fmt.Errorf("failed to load path history: %w", err)
	}
	return history, nil
}

// RememberPaths moves the given folders to the front of their history lists.
// Empty values are ignored.
func (m *UserDataManager) RememberPaths(source, dest, scan string) error {
	history, err := m.LoadPathHistory()
	if err != nil {
		return err
	}

	history.Source = pushRecent(history.Source, source)
	history.Dest = pushRecent(history.Dest, dest)
	history.Scan = pushRecent(history.Scan, scan)
	return m.SavePathHistory(history)
}

func pushRecent(list []string, path string) []string {
	if path == "" {
		return list
	}
	out := []string{path}
	for _, p := range list {
		if p != path && len(out) < maxRecentPaths {
			out = append(out, p)
		}
	}
	return out
}

// writeJSON writes v through a temporary file and a rename.
func (m *UserDataManager) writeJSON(name string, v any) error {
	filename := filepath.Join(m.dataDir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename %s: %w", name, err)
	}

	return nil
}

// readJSON decodes the named file into v. A missing file is not an error.
func (m *UserDataManager) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(m.dataDir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
