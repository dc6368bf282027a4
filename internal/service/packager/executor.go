package packager

import (
	"context"
	"os"
	"os/exec"
)

// Executor runs the external packaging command. It is a seam for tests;
// production runs use runCommand.
type Executor func(ctx context.Context, name string, args ...string) error

// runCommand executes the packaging tool with inherited standard streams
// and blocks until it exits. No timeout is applied; cancelling the context
// (for example on SIGINT) terminates the child.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
