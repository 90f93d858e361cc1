package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/syncdash/syncdash/internal/log"
)

// Result is the outcome of a command whose exit code is meaningful.
type Result struct {
	ExitCode int
	Output   string
}

// OK reports whether the command exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Lines returns the non-empty trimmed lines of the output.
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.Output, "\n") {
		if line = strings.TrimRight(line, "\r "); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// waitDelay bounds how long a finished command may hold its output open. A
// process that daemonizes (rclone mount --daemon) can leave a child owning
// the pipe.
const waitDelay = time.Second

func command(ctx context.Context, dir, name string, args ...string) (*exec.Cmd, func()) {
	c := exec.CommandContext(ctx, name, args...)
	c.WaitDelay = waitDelay
	if dir != "" {
		c.Dir = dir
	}
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	return c, func() { done(time.Since(start)) }
}

// RunContext executes a command and returns stderr in the error message if it fails.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	c, finish := command(ctx, dir, name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	err := c.Run()
	finish()
	return wrapErr(ctx, err, stderr.String())
}

// OutputContext executes a command and returns stdout, with stderr in error if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	c, finish := command(ctx, dir, name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	out, err := c.Output()
	finish()
	if err := wrapErr(ctx, err, stderr.String()); err != nil {
		return nil, err
	}
	return out, nil
}

// CombinedContext executes a command and returns its exit code with stdout
// and stderr interleaved. A non-zero exit status is not an error; only a
// failure to start the command or a cancelled context is.
func CombinedContext(ctx context.Context, dir, name string, args ...string) (Result, error) {
	c, finish := command(ctx, dir, name, args...)
	out, err := c.CombinedOutput()
	finish()
	return result(ctx, string(out), err)
}

// StreamContext executes a command and calls onLine for each line of
// combined output as it is produced. It returns the exit code with the same
// error semantics as [CombinedContext].
func StreamContext(ctx context.Context, dir string, onLine func(string), name string, args ...string) (Result, error) {
	c, finish := command(ctx, dir, name, args...)

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	var (
		buf strings.Builder
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			buf.WriteString(line)
			buf.WriteByte('\n')
			if onLine != nil {
				onLine(line)
			}
		}
		// drain so the writer never blocks on an oversized line
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := c.Run()
	pw.Close()
	wg.Wait()
	finish()
	return result(ctx, buf.String(), err)
}

func result(ctx context.Context, out string, err error) (Result, error) {
	if ctx.Err() != nil {
		return Result{ExitCode: -1, Output: out}, ctx.Err()
	}
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return Result{Output: out}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Output: out}, nil
	}
	return Result{ExitCode: -1, Output: out}, err
}

func wrapErr(ctx context.Context, err error, stderr string) error {
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}
