package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var (
	ErrLaunch     = errors.New("simulator could not be launched")
	errJobTimeout = errors.New("simulator timed out")
)

// Shell exit codes for "found but not executable" and "not found".
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// CheckExecutable makes sure the simulator can be started before any job is
// dispatched. Bare names are resolved through PATH.
func CheckExecutable(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no executable configured", ErrLaunch)
	}
	if !strings.ContainsRune(path, os.PathSeparator) {
		if _, err := exec.LookPath(path); err != nil {
			return fmt.Errorf("%w: %v", ErrLaunch, err)
		}
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrLaunch, path)
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrLaunch, path)
	}
	return nil
}

// execute runs "<executable> <configPath>" through sh with stdout and stderr
// merged. A nonzero exit is reported through the exit code, not the error.
func execute(ctx context.Context, executable, configPath string, timeout time.Duration) (string, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", "exec "+shellQuote(executable)+" "+shellQuote(configPath))
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	text := strings.ToValidUTF8(string(out), "�")

	if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return text, -1, fmt.Errorf("%w after %s", errJobTimeout, timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == exitNotExecutable || code == exitNotFound {
			return text, code, fmt.Errorf("%w: sh exited with %d: %s", ErrLaunch, code, firstLine(text))
		}
		return text, code, nil
	}
	if err != nil {
		return text, -1, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	return text, 0, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
