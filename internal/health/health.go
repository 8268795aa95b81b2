// Package health runs a server's advisory health-check command. The result
// informs inspection output only; it never gates the supervision state
// machine.
package health

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a health-check invocation.
const DefaultTimeout = 30 * time.Second

// Result of one health-check run.
type Result struct {
	Healthy bool   `json:"healthy"`
	Output  string `json:"output,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Run executes the health-check command with a bounded timeout. Exit code
// zero means healthy; a non-zero exit is unhealthy rather than an error.
func Run(ctx context.Context, command string, timeout time.Duration) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Err: "no health check configured"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := buildShellAwareCommand(ctx, command)
	out, err := cmd.CombinedOutput()
	res := Result{Output: strings.TrimSpace(string(out))}
	if err == nil {
		res.Healthy = true
		return res
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return res
	}
	res.Err = err.Error()
	return res
}

// buildShellAwareCommand avoids invoking a shell unless obvious shell
// metacharacters are present.
func buildShellAwareCommand(ctx context.Context, cmdStr string) *exec.Cmd {
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		// #nosec G204
		return exec.CommandContext(ctx, "/bin/sh", "-c", cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// #nosec G204
	return exec.CommandContext(ctx, name, args...)
}
