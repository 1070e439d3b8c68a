package build

import (
	"context"
	"io"
	"os/exec"
	"runtime"
)

// Process is a started command.
type Process interface {
	// Wait blocks until the command exits. It returns an error if the command
	// could not be waited for or exited with a non-zero status.
	Wait() error
}

// Spawner starts commands.
type Spawner interface {
	Spawn(ctx context.Context, command string) (Process, error)
}

// ShellSpawner runs each command line through the system shell in Dir.
type ShellSpawner struct {
	Dir    string
	Env    []string // nil inherits the current environment
	Stdout io.Writer
	Stderr io.Writer
}

func (s ShellSpawner) Spawn(ctx context.Context, command string) (Process, error) {
	var cmd *exec.Cmd

	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	cmd.Dir = s.Dir
	cmd.Env = s.Env
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return cmd, nil
}
