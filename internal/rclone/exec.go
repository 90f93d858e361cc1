package rclone

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/syncdash/syncdash/internal/cmd"
)

// ErrRcloneNotFound is returned when rclone is not on PATH.
var ErrRcloneNotFound = errors.New("rclone not found: please install rclone (https://rclone.org/install/)")

// CheckInstalled verifies that rclone is available.
func CheckInstalled() error {
	if _, err := exec.LookPath("rclone"); err != nil {
		return ErrRcloneNotFound
	}
	return nil
}

// Runner executes external commands for the Manager.
type Runner interface {
	// Run executes name and passes combined output lines to onLine (which
	// may be nil). A non-zero exit is reported in the Result, not as error.
	Run(ctx context.Context, onLine func(string), name string, args ...string) (cmd.Result, error)
	// Output returns stdout. A non-zero exit is an error.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches name detached from the terminal and returns at once.
	Start(name string, args ...string) error
	// Attach runs name on the terminal's stdio until it exits.
	Attach(ctx context.Context, name string, args ...string) error
}

// ExecRunner is the Runner backed by real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, onLine func(string), name string, args ...string) (cmd.Result, error) {
	return cmd.StreamContext(ctx, "", onLine, name, args...)
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", name, args...)
}

func (ExecRunner) Start(name string, args ...string) error {
	c := exec.Command(name, args...)
	// own session: the mount survives the terminal that started it
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := c.Start(); err != nil {
		return err
	}
	return c.Process.Release()
}

func (ExecRunner) Attach(ctx context.Context, name string, args ...string) error {
	c := exec.CommandContext(ctx, name, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
