// Package bash runs and inspects shell command lines with the embedded
// mvdan.cc/sh interpreter, so git queries never depend on a system shell.
package bash

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// lockedBuffer collects output written from the interpreter's goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Result is the captured outcome of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes command with dir as its working directory. A non-zero exit
// code is reported in Result, not as an error; errors are reserved for
// commands that fail to parse or cannot be started.
func Run(ctx context.Context, dir string, command string) (Result, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("failed to parse bash command: %w", err)
	}
	if len(prog.Stmts) == 0 {
		return Result{}, nil
	}

	stdout, stderr := &lockedBuffer{}, &lockedBuffer{}
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("failed to create runner: %w", err)
	}

	err = runner.Run(ctx, prog)
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		return result, nil
	}
	if status, ok := interp.IsExitStatus(err); ok {
		result.ExitCode = int(status)
		return result, nil
	}
	result.ExitCode = 1
	return result, err
}

// Output runs command in dir and returns its trimmed stdout. Non-zero exit
// codes are returned as errors.
func Output(ctx context.Context, dir string, command string) (string, error) {
	result, err := Run(ctx, dir, command)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%q exited with %d: %s", command, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return strings.TrimSpace(result.Stdout), nil
}
