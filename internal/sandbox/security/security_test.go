package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSanitizeNameReplacesUnsafeChars(t *testing.T) {
	cases := map[string]string{
		"solution":           "solution",
		"my solution":        "my_solution",
		"../../etc/passwd":   "_.._etc_passwd",
		".hidden":            "hidden",
		"...dots":            "dots",
		"a+b":                "a_b",
		"name.cpp":           "name.cpp",
		"with-dash_ok.v2":    "with-dash_ok.v2",
		"semi;rm -rf":        "semi_rm_-rf",
		"":                   "",
		"中文名":                "___",
	}
	for raw, want := range cases {
		if got := SanitizeName(raw); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	raw := strings.Repeat("a", 200)
	if got := SanitizeName(raw); len(got) != 100 {
		t.Fatalf("expected 100 chars, got %d", len(got))
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{"../../x", ".hidden file", strings.Repeat("b.", 80), "ok_name-1.cpp"}
	for _, raw := range inputs {
		once := SanitizeName(raw)
		if twice := SanitizeName(once); twice != once {
			t.Errorf("not idempotent for %q: %q != %q", raw, twice, once)
		}
	}
}

func newTestGuard(t *testing.T, forbidden []string) (*Guard, string, string) {
	t.Helper()
	ws := t.TempDir()
	tc := t.TempDir()
	g, err := NewGuard(ws, tc, forbidden)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return g, ws, tc
}

func TestConfineAcceptsPathsInsideRoots(t *testing.T) {
	g, ws, tc := newTestGuard(t, nil)
	for _, p := range []string{
		filepath.Join(ws, "execute", "a.exe"),
		filepath.Join(ws, "sources", "b.cpp"),
		filepath.Join(tc, "bin", "gdb"),
		ws,
	} {
		if _, ok := g.Confine(p); !ok {
			t.Errorf("expected %q to be confined", p)
		}
	}
}

func TestConfineRejectsOutsidePaths(t *testing.T) {
	g, ws, _ := newTestGuard(t, nil)
	outside := []string{
		"/etc/passwd",
		filepath.Join(ws, "..", "escape"),
		filepath.Join(ws, "execute", "..", "..", "..", "etc", "shadow"),
		filepath.Dir(ws) + "-sibling",
	}
	for _, p := range outside {
		if resolved, ok := g.Confine(p); ok {
			t.Errorf("expected %q to be rejected, resolved to %q", p, resolved)
		}
	}
}

func TestConfineRejectsPrefixSibling(t *testing.T) {
	// /tmp/ws-evil must not pass just because it shares the /tmp/ws prefix.
	g, ws, _ := newTestGuard(t, nil)
	sibling := ws + "evil"
	if _, ok := g.Confine(filepath.Join(sibling, "bin")); ok {
		t.Fatalf("prefix sibling %q passed confinement", sibling)
	}
}

func TestConfineResolvesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows")
	}
	g, ws, _ := newTestGuard(t, nil)

	outside := t.TempDir()
	link := filepath.Join(ws, "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if resolved, ok := g.Confine(filepath.Join(link, "file")); ok {
		t.Fatalf("symlink escape passed confinement: %q", resolved)
	}
}

func TestValidateCommandForbiddenSubstrings(t *testing.T) {
	g, ws, _ := newTestGuard(t, []string{"rm -rf", "shutdown"})
	if g.ValidateCommand("RM -RF /") {
		t.Error("forbidden substring should be case-insensitive")
	}
	if g.ValidateCommand(filepath.Join(ws, "execute", "shutdown.exe")) {
		t.Error("forbidden substring inside a path should be rejected")
	}
	if !g.ValidateCommand(filepath.Join(ws, "execute", "prog.exe")) {
		t.Error("plain binary path should pass")
	}
}

func TestValidateCommandDangerousPatterns(t *testing.T) {
	g, _, _ := newTestGuard(t, nil)
	bad := []string{
		"./prog && rm -rf /",
		"./prog ; rm x",
		"./prog | rm x",
		"echo `whoami`",
		"echo $(whoami)",
		"./prog > /dev/sda",
		"./prog >> /dev/null",
		"",
		`"unterminated`,
	}
	for _, cmd := range bad {
		if g.ValidateCommand(cmd) {
			t.Errorf("expected %q to be rejected", cmd)
		}
	}
	if !g.ValidateCommand("./prog --flag value") {
		t.Error("benign command rejected")
	}
}

func TestValidateScriptForbiddenSubstrings(t *testing.T) {
	g, _, _ := newTestGuard(t, []string{"rm -rf", "shutdown"})
	if g.ValidateScript("shell RM -RF /\nquit\n") {
		t.Error("forbidden substring should be rejected case-insensitively")
	}
	if !g.ValidateScript("break main\nrun\nbacktrace\nquit\n") {
		t.Error("plain script rejected")
	}
}

func TestValidateScriptAllowsShellMetacharacters(t *testing.T) {
	g, _, _ := newTestGuard(t, []string{"rm -rf"})
	ok := []string{
		"print buf[`idx]",
		"print $(int)x",
		"print \"unterminated",
		"",
	}
	for _, s := range ok {
		if !g.ValidateScript(s) {
			t.Errorf("expected %q to pass", s)
		}
	}
}
