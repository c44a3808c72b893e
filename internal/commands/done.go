package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasktree/internal/config"
	"tasktree/internal/exitcode"
	"tasktree/internal/service"
	"tasktree/internal/session"
	"tasktree/internal/tree"
)

func init() {
	Register(&DoneCmd{})
	Register(&RmCmd{})
}

// DoneCmd marks a task and its subtasks completed.
type DoneCmd struct {
	listFlag
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task and its subtasks completed" }
func (c *DoneCmd) Usage() string     { return "tasktree done [--list <list-name>] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runRemoval(ctx, cfg, svc, c.listName, args, out, errOut, (*session.Session).Complete)
}

// RmCmd deletes a task and its subtasks.
type RmCmd struct {
	listFlag
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return nil }
func (c *RmCmd) Synopsis() string  { return "Delete a task and its subtasks" }
func (c *RmCmd) Usage() string     { return "tasktree rm [--list <list-name>] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runRemoval(ctx, cfg, svc, c.listName, args, out, errOut, (*session.Session).Remove)
}

type removeFunc func(s *session.Session, ctx context.Context, key string) (tree.Removal, error)

// runRemoval is the shared implementation for done and rm.
func runRemoval(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string, out, errOut io.Writer, remove removeFunc) int {
	switch len(args) {
	case 0:
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	case 1:
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, listName, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close(context.WithoutCancel(ctx))

	key, code := resolveRef(s, args[0], errOut)
	if code != exitcode.Success {
		return code
	}
	if _, err := remove(s, ctx, key); err != nil {
		return reportTreeError(err, errOut)
	}
	if code := closeSession(ctx, s, errOut); code != exitcode.Success {
		return code
	}

	printOK(cfg, out)
	return exitcode.Success
}
