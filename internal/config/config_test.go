package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

// TestConfigValidate_RequiresSource는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConfigValidate_RequiresSource(t *testing.T) {
	// source 누락은 ValidationError(field=source)로 반환되어야 한다.
	cfg := &Config{
		Dest: "/tmp/dest",
	}

	err := cfg.Validate()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if validationErr.Field != "source" {
		t.Fatalf("expected field source, got %s", validationErr.Field)
	}
}

// TestConfigValidate_RequiresDest는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConfigValidate_RequiresDest(t *testing.T) {
	// dest 누락은 ValidationError(field=dest)로 반환되어야 한다.
	cfg := &Config{
		Source: "/tmp/source",
	}

	err := cfg.Validate()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if validationErr.Field != "dest" {
		t.Fatalf("expected field dest, got %s", validationErr.Field)
	}
}

// TestConfigValidate_FillsDefaults는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConfigValidate_FillsDefaults(t *testing.T) {
	// 비어 있는 구조/로그/히스토리/락/uncategorized 값이 기본값으로 채워져야 한다.
	cfg := &Config{
		Source: "/tmp/source",
		Dest:   "/tmp/dest",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}
	stateDir := filepath.Join(homeDir, ".mediasort")

	if cfg.Structure != types.TemplateYearMonth {
		t.Fatalf("unexpected structure: %s", cfg.Structure)
	}
	if cfg.LogFile != filepath.Join(stateDir, "mediasort.log") {
		t.Fatalf("unexpected log file: %s", cfg.LogFile)
	}
	if cfg.HistoryFile != filepath.Join(stateDir, "history.db") {
		t.Fatalf("unexpected history file: %s", cfg.HistoryFile)
	}
	if cfg.LockFile != filepath.Join(stateDir, "mediasort.lock") {
		t.Fatalf("unexpected lock file: %s", cfg.LockFile)
	}
	if cfg.UncategorizedDir != "uncategorized" {
		t.Fatalf("unexpected uncategorized dir: %s", cfg.UncategorizedDir)
	}
	if cfg.MoveConflict != types.ConflictPolicySkip {
		t.Fatalf("unexpected move conflict: %s", cfg.MoveConflict)
	}
}

// TestConfigNormalize_Structure는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConfigNormalize_Structure(t *testing.T) {
	// yyyy/MMM 같은 별칭은 정규 템플릿으로 바뀌고 알 수 없는 값은 거부된다.
	tests := []struct {
		in      types.StructureTemplate
		want    types.StructureTemplate
		wantErr bool
	}{
		{"year", types.TemplateYear, false},
		{"yyyy/MMM", types.TemplateYearMonth, false},
		{"YYYY/MMM/DD", types.TemplateYearMonthDay, false},
		{"year/month/day/", types.TemplateYearMonthDay, false},
		{"week", "", true},
	}

	for _, tt := range tests {
		cfg := &Config{Structure: tt.in}
		err := cfg.Normalize()
		if tt.wantErr {
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != "structure" {
				t.Errorf("%q: expected structure validation error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if cfg.Structure != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.in, tt.want, cfg.Structure)
		}
	}
}

// TestConfigNormalize_RejectsUnknownMoveConflict는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConfigNormalize_RejectsUnknownMoveConflict(t *testing.T) {
	// overwrite 정책은 지원하지 않으므로 거부되어야 한다.
	cfg := &Config{MoveConflict: "overwrite"}

	err := cfg.Normalize()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "move_conflict" {
		t.Fatalf("expected move_conflict validation error, got %v", err)
	}
}

// TestLoadFromFile_ReadsYAMLIntoConfig는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoadFromFile_ReadsYAMLIntoConfig(t *testing.T) {
	// YAML 파일 로드 시 명시 필드가 Config에 반영되고 나머지는 기본값을 유지해야 한다.
	yamlContent := strings.Join([]string{
		"source: /data/source",
		"dest: /data/dest",
		"structure: year/month/day",
		"dry_run: true",
	}, "\n")

	filePath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(filePath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(filePath)
	if err != nil {
		t.Fatalf("load from file failed: %v", err)
	}
	if cfg.Source != "/data/source" || cfg.Dest != "/data/dest" {
		t.Fatalf("unexpected source/dest: %+v", cfg)
	}
	if cfg.Structure != types.TemplateYearMonthDay || !cfg.DryRun {
		t.Fatalf("unexpected structure/dry_run: %+v", cfg)
	}
	if cfg.UncategorizedDir != "uncategorized" {
		t.Fatalf("default uncategorized dir lost: %+v", cfg)
	}
}

// TestLoadFromFile_ReadsTOMLIntoConfig는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoadFromFile_ReadsTOMLIntoConfig(t *testing.T) {
	// .toml 확장자는 TOML 파서로 읽혀야 한다.
	tomlContent := strings.Join([]string{
		`source = "/data/source"`,
		`dest = "/data/dest"`,
		`structure = "year"`,
		`move_conflict = "rename"`,
		`hash_verify = true`,
	}, "\n")

	filePath := filepath.Join(t.TempDir(), "mediasort.toml")
	if err := os.WriteFile(filePath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(filePath)
	if err != nil {
		t.Fatalf("load from file failed: %v", err)
	}
	if cfg.Source != "/data/source" || cfg.Structure != types.TemplateYear {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MoveConflict != types.ConflictPolicyRename || !cfg.HashVerify {
		t.Fatalf("unexpected move_conflict/hash_verify: %+v", cfg)
	}
}

// TestLoadFromFile_RejectsUnknownTOMLKey는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoadFromFile_RejectsUnknownTOMLKey(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "mediasort.toml")
	if err := os.WriteFile(filePath, []byte(`jobs = 4`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(filePath); err == nil {
		t.Fatal("expected error for unknown toml key")
	}
}

// TestLoadFromFile_ReturnsReadError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoadFromFile_ReturnsReadError(t *testing.T) {
	// 존재하지 않는 설정 파일은 read 에러를 반환해야 한다.
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected read error for missing config file")
	}
}

// TestLoadFromFile_ReturnsYAMLParseError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLoadFromFile_ReturnsYAMLParseError(t *testing.T) {
	// 잘못된 YAML 문법은 unmarshal 에러를 반환해야 한다.
	filePath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(filePath, []byte("source: ["), 0644); err != nil {
		t.Fatalf("failed to write broken yaml: %v", err)
	}

	_, err := LoadFromFile(filePath)
	if err == nil {
		t.Fatal("expected yaml parse error")
	}
}

// TestValidationError_ErrorFormat는 테스트 코드 동작을 검증하거나 보조합니다.
func TestValidationError_ErrorFormat(t *testing.T) {
	// ValidationError.Error()는 "field: message" 형식을 반환해야 한다.
	err := (&ValidationError{Field: "source", Message: "is required"}).Error()
	if err != "source: is required" {
		t.Fatalf("unexpected validation error format: %s", err)
	}
}
