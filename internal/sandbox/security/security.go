// Package security implements the path guard for the sandbox: identifier
// sanitization, path confinement to allow-listed roots, and a command
// denylist. Every caller-influenced path must pass Confine before it is
// opened or executed.
package security

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

const maxNameLength = 100

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// dangerousPatterns match shell constructs that have no business in a
// binary path or debugger command: chained rm, substitution, device writes.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)&&\s*rm`),
	regexp.MustCompile(`(?i);\s*rm`),
	regexp.MustCompile(`(?i)\|\s*rm`),
	regexp.MustCompile("`.*`"),
	regexp.MustCompile(`\$\(.*\)`),
	regexp.MustCompile(`>\s*/dev/`),
	regexp.MustCompile(`>>\s*/dev/`),
}

// SanitizeName maps an untrusted identifier to a filesystem-safe name.
// Characters outside [A-Za-z0-9_.-] become underscores, leading dots are
// stripped, and the result is truncated to 100 characters. Total and
// idempotent: never fails, and sanitizing twice changes nothing.
func SanitizeName(raw string) string {
	safe := unsafeNameChars.ReplaceAllString(raw, "_")
	safe = strings.TrimLeft(safe, ".")
	if len(safe) > maxNameLength {
		safe = safe[:maxNameLength]
	}
	return safe
}

// Guard confines paths to the workspace and toolchain roots and rejects
// commands matching the configured denylist.
type Guard struct {
	workspaceRoot string
	toolchainRoot string
	forbidden     []string
}

// NewGuard creates a guard for the given roots. The workspace root must
// exist; the toolchain root may be empty when no debugger is configured.
func NewGuard(workspaceRoot, toolchainRoot string, forbidden []string) (*Guard, error) {
	ws, err := resolvePath(workspaceRoot)
	if err != nil {
		return nil, err
	}
	tc := ""
	if toolchainRoot != "" {
		tc, err = resolvePath(toolchainRoot)
		if err != nil {
			return nil, err
		}
	}
	lowered := make([]string, 0, len(forbidden))
	for _, f := range forbidden {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			lowered = append(lowered, f)
		}
	}
	return &Guard{workspaceRoot: ws, toolchainRoot: tc, forbidden: lowered}, nil
}

// Confine resolves symlinks and relative segments in path and reports
// whether the resolved path lies under the workspace or toolchain root.
// The resolved absolute path is returned so callers operate on it rather
// than on the raw input.
func (g *Guard) Confine(path string) (string, bool) {
	resolved, err := resolvePath(path)
	if err != nil {
		return "", false
	}
	if underRoot(resolved, g.workspaceRoot) {
		return resolved, true
	}
	if g.toolchainRoot != "" && underRoot(resolved, g.toolchainRoot) {
		return resolved, true
	}
	return "", false
}

// ValidateCommand rejects a command line containing any configured
// forbidden substring (case-insensitive) or a dangerous shell pattern.
// This is a defense-in-depth denylist layered on top of Confine, not a
// replacement for it.
func (g *Guard) ValidateCommand(command string) bool {
	lowered := strings.ToLower(command)
	for _, f := range g.forbidden {
		if strings.Contains(lowered, f) {
			return false
		}
	}
	for _, p := range dangerousPatterns {
		if p.MatchString(command) {
			return false
		}
	}
	fields, err := shlex.Split(command)
	if err != nil || len(fields) == 0 {
		return false
	}
	return true
}

// ValidateScript applies only the forbidden-substring check. Debugger
// scripts are free-form gdb input where backticks, substitution syntax
// and unbalanced quotes are legitimate, so the shell-pattern and shlex
// checks from ValidateCommand do not apply.
func (g *Guard) ValidateScript(script string) bool {
	lowered := strings.ToLower(script)
	for _, f := range g.forbidden {
		if strings.Contains(lowered, f) {
			return false
		}
	}
	return true
}

// resolvePath returns the absolute path with symlinks evaluated. Paths
// that do not exist yet are resolved through their deepest existing
// ancestor so a dangling suffix cannot hide a symlinked prefix.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	dir := abs
	var suffix []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		suffix = append([]string{filepath.Base(dir)}, suffix...)
		dir = parent
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
	}
	return abs, nil
}

func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
