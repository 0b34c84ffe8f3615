package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

// TestLogger_WritesTextEntriesToFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_WritesTextEntriesToFile(t *testing.T) {
	// 텍스트 로깅 모드에서 Info/Error/LogTask/LogPath가 파일에 기록되어야 한다.
	logPath := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(logPath, false, true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hello")
	logger.Error("failed op", errors.New("boom"))
	logger.LogTask(types.CopyTask{
		Source:   types.MediaFile{Name: "a.jpg", Path: "/src/a.jpg"},
		DestPath: "/dest/2023/Jun/a.jpg",
		Action:   types.CopyActionCopied,
	})
	logger.LogPath(types.CopyActionDeleted, "/dup/b.jpg", "", nil)

	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"INFO hello",
		"ERROR failed op - Error: boom",
		"copied: /src/a.jpg -> /dest/2023/Jun/a.jpg",
		"deleted: /dup/b.jpg",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in log: %s", want, text)
		}
	}
}

// TestLogger_JSONModeWritesJSONLine는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_JSONModeWritesJSONLine(t *testing.T) {
	// JSON 로깅 모드에서는 한 줄 JSON 레코드가 출력되어야 한다.
	logPath := filepath.Join(t.TempDir(), "app.jsonl")
	logger, err := New(logPath, true, false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.LogTask(types.CopyTask{
		Source:   types.MediaFile{Path: "/src/x.jpg"},
		DestPath: "/dest/x.jpg",
		Action:   types.CopyActionFailed,
		Error:    "permission denied",
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read json log file: %v", err)
	}
	for _, want := range []string{`"level":"ERROR"`, `"source":"/src/x.jpg"`, `"error":"permission denied"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("missing %s in json log: %s", want, string(data))
		}
	}
}

// TestLogger_EmptyPathDisablesFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_EmptyPathDisablesFile(t *testing.T) {
	// 로그 경로가 비어 있으면 파일 없이도 동작해야 한다.
	logger, err := New("", true, true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("ignored")
	logger.Error("ignored", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// TestLogger_SummaryWritesToConsole는 테스트 코드 동작을 검증하거나 보조합니다.
func TestLogger_SummaryWritesToConsole(t *testing.T) {
	// Summary/ResolveSummary 출력은 console writer로 전달되어야 한다.
	var buf bytes.Buffer
	logger := Discard()
	logger.SetConsole(&buf)

	logger.Summary(types.RunStatistics{
		Total:       2,
		Copied:      1,
		Skipped:     1,
		Duration:    2 * time.Second,
		BytesCopied: 1024,
	})
	logger.ResolveSummary(types.ResolveSummary{Operation: "clean", Deleted: 3, Skipped: 1})

	out := buf.String()
	if !strings.Contains(out, "MediaSort Summary") {
		t.Fatalf("missing summary header: %s", out)
	}
	if !strings.Contains(out, "Clean complete. Deleted: 3, Skipped: 1") {
		t.Fatalf("missing clean summary: %s", out)
	}
}

func TestFormatText(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	got := FormatText(LogEntry{Timestamp: ts, Level: LevelWarn, Message: "m", Error: "e"})
	if got != "[2024-01-02 03:04:05] WARN m - Error: e\n" {
		t.Fatalf("unexpected line %q", got)
	}
}
