package health

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix-only test")
	}
}

func TestRunHealthy(t *testing.T) {
	requireUnix(t)
	res := Run(context.Background(), "echo ok", time.Second)
	if !res.Healthy {
		t.Fatalf("exit 0 should be healthy: %+v", res)
	}
	if res.Output != "ok" {
		t.Fatalf("output not captured: %q", res.Output)
	}
}

func TestRunUnhealthyExit(t *testing.T) {
	requireUnix(t)
	res := Run(context.Background(), "sh -c 'echo failing; exit 1'", time.Second)
	if res.Healthy {
		t.Fatalf("non-zero exit should be unhealthy")
	}
	if res.Err != "" {
		t.Fatalf("non-zero exit is not an execution error: %+v", res)
	}
	if res.Output != "failing" {
		t.Fatalf("output not captured: %q", res.Output)
	}
}

func TestRunTimeout(t *testing.T) {
	requireUnix(t)
	begin := time.Now()
	res := Run(context.Background(), "sleep 10", 200*time.Millisecond)
	if res.Healthy {
		t.Fatalf("timed-out check should not be healthy")
	}
	if time.Since(begin) > 5*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

func TestRunEmptyCommand(t *testing.T) {
	res := Run(context.Background(), "  ", time.Second)
	if res.Healthy || res.Err == "" {
		t.Fatalf("empty command should report an error: %+v", res)
	}
}

func TestRunMissingBinary(t *testing.T) {
	requireUnix(t)
	res := Run(context.Background(), "/nonexistent/healthprobe", time.Second)
	if res.Healthy || res.Err == "" {
		t.Fatalf("unlaunchable check should report an error: %+v", res)
	}
}
