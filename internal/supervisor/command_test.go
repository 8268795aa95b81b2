package supervisor

import (
	"strings"
	"testing"
)

func TestBuildCommandDirectExec(t *testing.T) {
	cmd := buildCommand("sleep 5")
	if !strings.HasSuffix(cmd.Path, "sleep") {
		t.Fatalf("expected direct exec of sleep, got %q", cmd.Path)
	}
	if len(cmd.Args) != 2 || cmd.Args[1] != "5" {
		t.Fatalf("args mismatch: %v", cmd.Args)
	}
}

func TestBuildCommandShellMetachars(t *testing.T) {
	for _, s := range []string{
		"echo hi | cat",
		"FOO=$BAR run",
		"run > out.log",
		"run && other",
		"echo 'quoted arg'",
	} {
		cmd := buildCommand(s)
		if cmd.Path != "/bin/sh" {
			t.Fatalf("%q should run through a shell, got %q", s, cmd.Path)
		}
		if cmd.Args[len(cmd.Args)-1] != s {
			t.Fatalf("script altered: %v", cmd.Args)
		}
	}
}

func TestBuildCommandExplicitShellNotDoubleWrapped(t *testing.T) {
	cmd := buildCommand(`sh -c 'echo hi && sleep 1'`)
	if cmd.Path != "/bin/sh" {
		t.Fatalf("expected /bin/sh, got %q", cmd.Path)
	}
	script := cmd.Args[len(cmd.Args)-1]
	if script != "echo hi && sleep 1" {
		t.Fatalf("outer quotes not stripped: %q", script)
	}
	if strings.Contains(script, "sh -c") {
		t.Fatalf("shell invocation double-wrapped: %q", script)
	}
}

func TestBuildCommandAbsoluteShellPrefix(t *testing.T) {
	cmd := buildCommand(`/bin/sh -c "sleep 9"`)
	if cmd.Path != "/bin/sh" {
		t.Fatalf("expected /bin/sh, got %q", cmd.Path)
	}
	if got := cmd.Args[len(cmd.Args)-1]; got != "sleep 9" {
		t.Fatalf("script mismatch: %q", got)
	}
}

func TestBuildCommandEmpty(t *testing.T) {
	cmd := buildCommand("   ")
	if cmd.Path != "/bin/true" {
		t.Fatalf("empty command should no-op, got %q", cmd.Path)
	}
}
