package main

import (
	"runtime"
	"testing"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix-only test")
	}
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := buildRoot()
	root.SetArgs(args)
	return root.Execute()
}

func TestCommandTree(t *testing.T) {
	root := buildRoot()
	want := []string{"create", "ps", "start", "stop", "restart", "rm", "logs", "inspect", "update", "backup", "events"}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Fatalf("subcommand %q missing", name)
		}
	}
}

func TestAliases(t *testing.T) {
	root := buildRoot()
	aliased := map[string]string{"list": "ps", "ls": "ps", "remove": "rm", "delete": "rm", "log": "logs"}
	for alias, target := range aliased {
		cmd, _, err := root.Find([]string{alias})
		if err != nil || cmd.Name() != target {
			t.Fatalf("alias %q should resolve to %q, got %v (%v)", alias, target, cmd, err)
		}
	}
}

func TestLifecycleThroughCLI(t *testing.T) {
	requireUnix(t)
	base := t.TempDir()

	steps := [][]string{
		{"--base-dir", base, "create", "web", "sleep 30", "--port", "8080:80"},
		{"--base-dir", base, "ps", "-a", "--format", "json"},
		{"--base-dir", base, "start", "web"},
		{"--base-dir", base, "inspect", "web", "--no-health"},
		{"--base-dir", base, "logs", "web", "-n", "5"},
		{"--base-dir", base, "stop", "web", "--timeout", "5s"},
		{"--base-dir", base, "rm", "web"},
	}
	for _, args := range steps {
		if err := runCLI(t, args...); err != nil {
			t.Fatalf("command %v failed: %v", args, err)
		}
	}
}

func TestMultipleNamesPerCommand(t *testing.T) {
	requireUnix(t)
	base := t.TempDir()

	for _, name := range []string{"web", "api"} {
		if err := runCLI(t, "--base-dir", base, "create", name, "sleep 30"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := runCLI(t, "--base-dir", base, "start", "web", "api"); err != nil {
		t.Fatalf("start web api: %v", err)
	}
	if err := runCLI(t, "--base-dir", base, "stop", "web", "api", "--timeout", "5s"); err != nil {
		t.Fatalf("stop web api: %v", err)
	}

	// A bad name in the middle fails the command but the others are
	// still processed.
	if err := runCLI(t, "--base-dir", base, "rm", "web", "ghost", "api"); err == nil {
		t.Fatalf("rm with unknown name should fail")
	}
	for _, name := range []string{"web", "api"} {
		if err := runCLI(t, "--base-dir", base, "inspect", name, "--no-health"); err == nil {
			t.Fatalf("server %s should have been removed", name)
		}
	}
}

func TestCreateRejectsDuplicateThroughCLI(t *testing.T) {
	base := t.TempDir()
	if err := runCLI(t, "--base-dir", base, "create", "web", "sleep 30"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := runCLI(t, "--base-dir", base, "create", "web", "sleep 30"); err == nil {
		t.Fatalf("duplicate create should fail")
	}
}

func TestUpdateOnlyChangesGivenFlags(t *testing.T) {
	base := t.TempDir()
	if err := runCLI(t, "--base-dir", base, "create", "web", "sleep 30", "--health-check", "echo ok"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := runCLI(t, "--base-dir", base, "update", "web", "--command", "sleep 60"); err != nil {
		t.Fatalf("update: %v", err)
	}

	root := buildRoot()
	root.SetArgs([]string{"--base-dir", base, "inspect", "web", "--no-health", "--format", "json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func TestUnknownServerFailsThroughCLI(t *testing.T) {
	base := t.TempDir()
	for _, args := range [][]string{
		{"--base-dir", base, "start", "ghost"},
		{"--base-dir", base, "stop", "ghost"},
		{"--base-dir", base, "inspect", "ghost"},
		{"--base-dir", base, "rm", "ghost"},
	} {
		if err := runCLI(t, args...); err == nil {
			t.Fatalf("command %v should fail for unknown server", args)
		}
	}
}
