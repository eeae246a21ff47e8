package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invitestudio/internal/storage"
)

// TestRecoverPanickingCall ensures Recover handles a panic, writes a report,
// attempts autosave, and does not terminate the test process due to injected exitFn.
func TestRecoverPanickingCall(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(os.Stderr, r) // drain pipe
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	wh := &storage.WorkspaceHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName)}

	func() {
		defer Recover(wh)
		panic("boom")
	}()

	// Allow time for filesystem writes
	time.Sleep(50 * time.Millisecond)

	var found string
	bdir := filepath.Join(root, storage.BackupsDirName)
	files, _ := os.ReadDir(bdir)
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(bdir, f.Name())
			break
		}
	}
	if found == "" {
		t.Fatalf("expected crash report file under backups dir")
	}
	b, err := os.ReadFile(found)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}

	// Autosave snapshot written alongside the crash report.
	snapshot := false
	files, _ = os.ReadDir(bdir)
	for _, f := range files {
		if strings.Contains(f.Name(), ".autosave-") {
			snapshot = true
		}
	}
	if !snapshot {
		t.Fatalf("expected autosave snapshot under backups dir")
	}
}
