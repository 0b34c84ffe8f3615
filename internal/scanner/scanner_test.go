package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/On-Jun9/MediaSort/internal/testsupport"
	"github.com/spf13/afero"
)

// TestScanner_Scan는 테스트 코드 동작을 검증하거나 보조합니다.
func TestScanner_Scan(t *testing.T) {
	// 확장자 필터와 하위 폴더 탐색, 이미지/비디오 분류를 함께 확인한다.
	fs := afero.NewMemMapFs()
	for _, name := range []string{
		"/src/photo1.jpg",
		"/src/photo2.JPEG",
		"/src/video1.mp4",
		"/src/document.pdf",
		"/src/subdir/photo3.heic",
	} {
		testsupport.WriteFile(t, fs, name, []byte("x"), time.Time{})
	}

	entries, err := New(fs, []string{"jpg", ".jpeg", "heic", "MP4"}).Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 files, got %d", len(entries))
	}

	var images, videos int
	for _, e := range entries {
		if e.IsImage {
			images++
		}
		if e.IsVideo {
			videos++
		}
	}
	if images != 3 || videos != 1 {
		t.Errorf("expected 3 images and 1 video, got %d and %d", images, videos)
	}
}

// TestScanner_ScanIncludesEverythingInLexicalOrder는 테스트 코드 동작을 검증하거나 보조합니다.
func TestScanner_ScanIncludesEverythingInLexicalOrder(t *testing.T) {
	// 필터가 없으면 모든 일반 파일을 경로 사전순으로 돌려줘야 한다.
	fs := afero.NewMemMapFs()
	for _, name := range []string{"/src/b.txt", "/src/a/z.bin", "/src/A.jpg", "/src/noext"} {
		testsupport.WriteFile(t, fs, name, []byte("x"), time.Time{})
	}
	fs.MkdirAll("/src/empty", 0755)

	entries, err := New(fs, nil).Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"/src/A.jpg", "/src/a/z.bin", "/src/b.txt", "/src/noext"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Path != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Path)
		}
	}
	if entries[3].Extension != "" || entries[3].Name != "noext" {
		t.Errorf("unexpected entry for extensionless file: %+v", entries[3])
	}
}

// TestScanner_ScanSkipsSymlinks는 테스트 코드 동작을 검증하거나 보조합니다.
func TestScanner_ScanSkipsSymlinks(t *testing.T) {
	// 심볼릭 링크(순환 링크 포함)는 따라가지 않고 건너뛴다.
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "real.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "real.jpg"), filepath.Join(tmpDir, "link.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(tmpDir, filepath.Join(tmpDir, "loop")); err != nil {
		t.Fatal(err)
	}

	entries, err := New(afero.NewOsFs(), nil).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "real.jpg" {
		t.Fatalf("expected only real.jpg, got %+v", entries)
	}
}

// TestScanner_ScanRootErrors는 테스트 코드 동작을 검증하거나 보조합니다.
func TestScanner_ScanRootErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/file.txt", []byte("x"), time.Time{})

	if _, err := New(fs, nil).Scan("/missing"); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := New(fs, nil).Scan("/file.txt"); err == nil {
		t.Error("expected error for non-directory root")
	}
}

// failDirFs는 테스트 코드 동작을 검증하거나 보조합니다.
type failDirFs struct {
	afero.Fs
	failDir string
}

func (f *failDirFs) Open(name string) (afero.File, error) {
	if name == f.failDir {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

// TestScanner_ScanReportsUnreadableDirectory는 테스트 코드 동작을 검증하거나 보조합니다.
func TestScanner_ScanReportsUnreadableDirectory(t *testing.T) {
	// 읽을 수 없는 하위 폴더는 핸들러로 보고하고 나머지 탐색은 계속한다.
	mem := afero.NewMemMapFs()
	testsupport.WriteFile(t, mem, "/src/locked/a.jpg", []byte("x"), time.Time{})
	testsupport.WriteFile(t, mem, "/src/open/b.jpg", []byte("x"), time.Time{})

	var reported []string
	s := New(&failDirFs{Fs: mem, failDir: "/src/locked"}, nil)
	s.OnError(func(path string, err error) {
		reported = append(reported, path)
	})

	entries, err := s.Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/src/open/b.jpg" {
		t.Fatalf("expected only /src/open/b.jpg, got %+v", entries)
	}
	if len(reported) != 1 || reported[0] != "/src/locked" {
		t.Fatalf("expected /src/locked to be reported, got %v", reported)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"/a/IMG.JPG":     "jpg",
		"/a/clip.tar.gz": "gz",
		"/a/noext":       "",
		"/a/.hidden":     "hidden",
	}
	for path, want := range tests {
		if got := Extension(path); got != want {
			t.Errorf("Extension(%q) = %q, want %q", path, got, want)
		}
	}
}
