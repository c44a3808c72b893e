package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasktree/internal/config"
	"tasktree/internal/exitcode"
	"tasktree/internal/output"
	"tasktree/internal/service"
)

func init() {
	Register(&TreeCmd{})
}

// TreeCmd prints the open tasks of a list as a tree. It is the default
// command.
type TreeCmd struct {
	listFlag
}

func (c *TreeCmd) Name() string      { return "tree" }
func (c *TreeCmd) Aliases() []string { return []string{"ls"} }
func (c *TreeCmd) Synopsis() string  { return "Print open tasks as a tree" }
func (c *TreeCmd) Usage() string     { return "tasktree tree [--list <list-name>]" }
func (c *TreeCmd) NeedsAuth() bool   { return true }

func (c *TreeCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
}

func (c *TreeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	forest := s.Snapshot()
	if code := closeSession(ctx, s, errOut); code != exitcode.Success {
		return code
	}

	if len(forest) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	output.FormatTree(out, forest)
	return exitcode.Success
}
