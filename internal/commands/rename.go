package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasktree/internal/config"
	"tasktree/internal/exitcode"
	"tasktree/internal/service"
)

func init() {
	Register(&RenameCmd{})
}

// RenameCmd implements the rename command.
type RenameCmd struct {
	listFlag
}

func (c *RenameCmd) Name() string      { return "rename" }
func (c *RenameCmd) Aliases() []string { return nil }
func (c *RenameCmd) Synopsis() string  { return "Change a task's title" }
func (c *RenameCmd) Usage() string     { return "tasktree rename [--list <list-name>] <ref> <title...>" }
func (c *RenameCmd) NeedsAuth() bool   { return true }

func (c *RenameCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
}

func (c *RenameCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	}
	title, ok := joinTitle(args[1:])
	if !ok {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close(context.WithoutCancel(ctx))

	key, code := resolveRef(s, args[0], errOut)
	if code != exitcode.Success {
		return code
	}
	if _, err := s.Rename(ctx, key, title); err != nil {
		return reportTreeError(err, errOut)
	}
	if code := closeSession(ctx, s, errOut); code != exitcode.Success {
		return code
	}

	printOK(cfg, out)
	return exitcode.Success
}
