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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listFlag
	parent string
}

// SetParent sets the parent reference (for testing).
func (c *AddCmd) SetParent(ref string) {
	c.parent = ref
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasktree add [--list <list-name>] [--parent <ref>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
	fs.StringVarP(&c.parent, "parent", "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title, ok := joinTitle(args)
	if !ok {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close(context.WithoutCancel(ctx))

	var parentKey string
	if c.parent != "" {
		if parentKey, code = resolveRef(s, c.parent, errOut); code != exitcode.Success {
			return code
		}
	}
	if _, err := s.Add(ctx, parentKey, title); err != nil {
		return reportTreeError(err, errOut)
	}
	if code := closeSession(ctx, s, errOut); code != exitcode.Success {
		return code
	}

	printOK(cfg, out)
	return exitcode.Success
}
