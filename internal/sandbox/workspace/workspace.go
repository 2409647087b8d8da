// Package workspace owns the confined directory tree used by the sandbox:
// sources, binaries, inputs, outputs and per-operation scratch space.
package workspace

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	appErr "github.com/hiturf/ow-oi-assistant/pkg/errors"
)

var tempSeq atomic.Uint64

func nextSeq() uint64 {
	return tempSeq.Add(1)
}

// Fixed categories created at startup. Per-call categories (e.g. gdb
// scripts) are created lazily by EnsureDir.
var fixedCategories = []string{
	"sources",
	"execute",
	"inputs",
	"outputs",
	"cache",
	"compile",
	"tests",
}

const dirMode = 0o700

// Workspace is the directory tree rooted at a configured path. Created
// once at startup; its structure is never mutated afterwards, so
// concurrent operations only contend on distinct allocated paths.
type Workspace struct {
	root string
}

// New resolves root, creates the fixed subdirectories with restrictive
// permissions, and returns the workspace. An unusable root is the one
// startup failure that should abort the process.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.WorkspaceUnavailable)
	}
	w := &Workspace{root: abs}
	for _, category := range fixedCategories {
		if _, err := w.EnsureDir(category); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Root returns the resolved workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the path of a category directory without creating it.
func (w *Workspace) Dir(category string) string {
	return filepath.Join(w.root, category)
}

// EnsureDir creates a category directory if missing. Idempotent and safe
// to call repeatedly. Permissions are tightened on platforms that honor
// them; on Windows the mode is advisory only.
func (w *Workspace) EnsureDir(category string) (string, error) {
	dir := w.Dir(category)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", appErr.WorkspaceError(err, dir)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dir, dirMode); err != nil {
			return "", appErr.WorkspaceError(err, dir)
		}
	}
	return dir, nil
}

// AllocTempPath reserves a collision-resistant path under a category
// directory without creating the file. The name is the millisecond
// timestamp joined with an 8-hex md5 digest of that timestamp and a
// process-wide counter, so allocations landing in the same millisecond
// still get distinct paths.
func (w *Workspace) AllocTempPath(category string) (string, error) {
	dir, err := w.EnsureDir(category)
	if err != nil {
		return "", err
	}
	millis := time.Now().UnixMilli()
	seq := nextSeq()
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%d", millis, seq)))
	digest := hex.EncodeToString(sum[:])[:8]
	return filepath.Join(dir, fmt.Sprintf("%d_%s", millis, digest)), nil
}

// SourcePath returns the canonical location for a named source file.
func (w *Workspace) SourcePath(safeName string) string {
	return filepath.Join(w.root, "sources", safeName+".cpp")
}

// BinaryPath returns the canonical location for a named binary.
func (w *Workspace) BinaryPath(safeName string) string {
	return filepath.Join(w.root, "execute", safeName+".exe")
}

// TestCasePath returns the location of a named test case file.
func (w *Workspace) TestCasePath(safeName string) string {
	return filepath.Join(w.root, "tests", safeName+".txt")
}

// WriteFile writes data to a path inside the workspace, creating the
// parent directory when needed.
func (w *Workspace) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return appErr.WorkspaceError(err, path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return appErr.WorkspaceError(err, path)
	}
	return nil
}
