package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

// TestValidatePath는 테스트 코드 동작을 검증하거나 보조합니다.
func TestValidatePath(t *testing.T) {
	// XSS 관련 패턴은 차단하고, 일반 경로는 허용해야 한다.
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path is allowed", "", false},
		{"angle brackets only are allowed", "/tmp/a<b>.jpg", false},
		{"html tag pattern is rejected", "/tmp/<script>alert(1)</script>", true},
		{"javascript url is rejected", "javascript:alert(1)", true},
		{"overlong path is rejected", "/" + string(make([]byte, 4096)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validatePath(%q) error = %v, wantErr=%v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestUserDataManager_SaveSettings_ReturnsValidationError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_SaveSettings_ReturnsValidationError(t *testing.T) {
	// 설정 저장 시 경로 검증 실패는 ValidationError로 노출되어야 한다.
	m := &UserDataManager{dataDir: t.TempDir()}

	err := m.SaveSettings(&Config{Source: "/tmp/<script>alert(1)</script>", Dest: "/tmp/dest"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "source" {
		t.Fatalf("expected field source, got %s", validationErr.Field)
	}

	err = m.SaveSettings(&Config{Source: "/src", Structure: "decade"})
	if !errors.As(err, &validationErr) || validationErr.Field != "structure" {
		t.Fatalf("expected structure ValidationError, got %v", err)
	}
}

// TestUserDataManager_LoadSettings_ReturnsDefaultWhenMissing는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_LoadSettings_ReturnsDefaultWhenMissing(t *testing.T) {
	// 설정 파일이 없으면 기본 설정이 채워진 객체를 반환해야 한다.
	m := &UserDataManager{dataDir: t.TempDir()}

	settings, err := m.LoadSettings()
	if err != nil {
		t.Fatalf("load settings failed: %v", err)
	}
	if settings.Structure != types.TemplateYearMonth || settings.UncategorizedDir != "uncategorized" {
		t.Fatalf("unexpected default settings: %+v", settings)
	}
}

// TestUserDataManager_SaveAndLoadSettings_RoundTrip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_SaveAndLoadSettings_RoundTrip(t *testing.T) {
	// settings 저장 후 로드 시 핵심 필드가 유지되고 템플릿은 정규화되어야 한다.
	m := &UserDataManager{dataDir: t.TempDir()}
	settings := &Config{
		Source:       "/source",
		Dest:         "/dest",
		Structure:    "yyyy/MMM/dd",
		DryRun:       true,
		MoveConflict: types.ConflictPolicyRename,
	}

	if err := m.SaveSettings(settings); err != nil {
		t.Fatalf("save settings failed: %v", err)
	}

	loaded, err := m.LoadSettings()
	if err != nil {
		t.Fatalf("load settings failed: %v", err)
	}
	if loaded.Source != "/source" || loaded.Dest != "/dest" || !loaded.DryRun {
		t.Fatalf("unexpected loaded settings: %+v", loaded)
	}
	if loaded.Structure != types.TemplateYearMonthDay || loaded.MoveConflict != types.ConflictPolicyRename {
		t.Fatalf("unexpected loaded settings fields: %+v", loaded)
	}
}

// TestNewUserDataManager_CreatesDefaultDirectory는 테스트 코드 동작을 검증하거나 보조합니다.
func TestNewUserDataManager_CreatesDefaultDirectory(t *testing.T) {
	// 빈 경로로 만들면 HOME 기준 ~/.mediasort 디렉터리를 생성해야 한다.
	home := t.TempDir()
	t.Setenv("HOME", home)

	m, err := NewUserDataManager("")
	if err != nil {
		t.Fatalf("new user data manager failed: %v", err)
	}
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if _, err := os.Stat(filepath.Join(home, ".mediasort")); err != nil {
		t.Fatalf("expected user data dir to exist: %v", err)
	}
}

// TestNewUserDataManager_ReturnsErrorWhenParentIsFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestNewUserDataManager_ReturnsErrorWhenParentIsFile(t *testing.T) {
	// 상위 경로가 파일이면 user data 디렉터리 생성이 실패해야 한다.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	if _, err := NewUserDataManager(filepath.Join(blocker, "data")); err == nil {
		t.Fatal("expected NewUserDataManager error")
	}
}

// TestUserDataManager_SaveSettings_ReturnsWriteError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_SaveSettings_ReturnsWriteError(t *testing.T) {
	// dataDir가 파일이면 settings 저장 시 write 에러를 반환해야 한다.
	blocker := filepath.Join(t.TempDir(), "not-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	m := &UserDataManager{dataDir: blocker}
	if err := m.SaveSettings(&Config{Source: "/src", Dest: "/dest"}); err == nil {
		t.Fatal("expected settings write error")
	}
}

// TestUserDataManager_SaveSettings_ReturnsRenameError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_SaveSettings_ReturnsRenameError(t *testing.T) {
	// 대상 파일명이 디렉터리면 atomic rename 단계에서 실패해야 한다.
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "settings.json", "child"), 0755); err != nil {
		t.Fatalf("failed to create settings target dir: %v", err)
	}

	m := &UserDataManager{dataDir: dataDir}
	if err := m.SaveSettings(&Config{Source: "/src", Dest: "/dest"}); err == nil {
		t.Fatal("expected settings rename error")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "settings.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be cleaned up, got %v", err)
	}
}

// TestUserDataManager_LoadSettings_ReturnsReadAndUnmarshalErrors는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_LoadSettings_ReturnsReadAndUnmarshalErrors(t *testing.T) {
	// settings 로드는 read 에러와 unmarshal 에러를 각각 반환해야 한다.
	t.Run("read_error", func(t *testing.T) {
		dataDir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dataDir, "settings.json"), 0755); err != nil {
			t.Fatalf("failed to create settings dir path: %v", err)
		}

		m := &UserDataManager{dataDir: dataDir}
		if _, err := m.LoadSettings(); err == nil {
			t.Fatal("expected settings read error")
		}
	})

	t.Run("unmarshal_error", func(t *testing.T) {
		dataDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dataDir, "settings.json"), []byte("{"), 0644); err != nil {
			t.Fatalf("failed to write broken settings: %v", err)
		}

		m := &UserDataManager{dataDir: dataDir}
		if _, err := m.LoadSettings(); err == nil {
			t.Fatal("expected settings unmarshal error")
		}
	})
}

// TestUserDataManager_SavePathHistory_ReturnsValidationError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_SavePathHistory_ReturnsValidationError(t *testing.T) {
	m := &UserDataManager{dataDir: t.TempDir()}

	err := m.SavePathHistory(&PathHistory{Scan: []string{"<img src=x onerror=alert(1)>"}})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "path_history" {
		t.Fatalf("expected path_history ValidationError, got %v", err)
	}
}

// TestUserDataManager_LoadPathHistory_ReturnsDefaultWhenMissing는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_LoadPathHistory_ReturnsDefaultWhenMissing(t *testing.T) {
	// 파일이 없으면 nil 이 아닌 빈 목록을 돌려줘야 JSON 이 []로 직렬화된다.
	m := &UserDataManager{dataDir: t.TempDir()}

	history, err := m.LoadPathHistory()
	if err != nil {
		t.Fatalf("load path history failed: %v", err)
	}
	if history.Source == nil || history.Dest == nil || history.Scan == nil {
		t.Fatalf("expected empty non-nil lists, got %+v", history)
	}
}

// TestUserDataManager_RememberPaths_MovesToFrontAndCaps는 테스트 코드 동작을 검증하거나 보조합니다.
func TestUserDataManager_RememberPaths_MovesToFrontAndCaps(t *testing.T) {
	// 최근 경로는 중복 없이 맨 앞으로 이동하고 최대 20개만 유지되어야 한다.
	m := &UserDataManager{dataDir: t.TempDir()}

	for i := 0; i < 25; i++ {
		if err := m.RememberPaths(fmt.Sprintf("/src/%d", i), "", ""); err != nil {
			t.Fatalf("remember failed at %d: %v", i, err)
		}
	}
	if err := m.RememberPaths("/src/10", "/dest", "/photos"); err != nil {
		t.Fatalf("remember failed: %v", err)
	}

	history, err := m.LoadPathHistory()
	if err != nil {
		t.Fatalf("load path history failed: %v", err)
	}
	if len(history.Source) != 20 {
		t.Fatalf("expected 20 sources, got %d", len(history.Source))
	}
	if history.Source[0] != "/src/10" || history.Source[1] != "/src/24" {
		t.Fatalf("unexpected order: %v", history.Source[:3])
	}
	for _, p := range history.Source[1:] {
		if p == "/src/10" {
			t.Fatal("duplicate entry kept in history")
		}
	}
	if len(history.Dest) != 1 || len(history.Scan) != 1 || history.UpdatedAt.IsZero() {
		t.Fatalf("unexpected history: %+v", history)
	}
}
