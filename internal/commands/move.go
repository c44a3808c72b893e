package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasktree/internal/config"
	"tasktree/internal/exitcode"
	"tasktree/internal/service"
	"tasktree/internal/tree"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd reorders or reparents a task. The flags mirror where a dragged
// row can be dropped: on another row (--into), or in the gap above
// (--before) or below (--after) it.
type MoveCmd struct {
	listFlag
	into   string
	before string
	after  string
}

// SetTarget sets the drop target flags (for testing).
func (c *MoveCmd) SetTarget(into, before, after string) {
	c.into, c.before, c.after = into, before, after
}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task within the tree" }
func (c *MoveCmd) Usage() string {
	return "tasktree move [--list <list-name>] <ref> (--into|--before|--after) <ref>"
}
func (c *MoveCmd) NeedsAuth() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs)
	fs.StringVar(&c.into, "into", "", "")
	fs.StringVar(&c.before, "before", "", "")
	fs.StringVar(&c.after, "after", "", "")
}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	case 1:
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	targetRef, req, ok := c.dropRequest()
	if !ok {
		fmt.Fprintln(errOut, "error: exactly one of --into, --before, --after required")
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, svc, c.listName, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close(context.WithoutCancel(ctx))

	if req.DragKey, code = resolveRef(s, args[0], errOut); code != exitcode.Success {
		return code
	}
	if req.DropKey, code = resolveRef(s, targetRef, errOut); code != exitcode.Success {
		return code
	}
	if _, err := s.Move(ctx, req); err != nil {
		return reportTreeError(err, errOut)
	}
	if code := closeSession(ctx, s, errOut); code != exitcode.Success {
		return code
	}

	printOK(cfg, out)
	return exitcode.Success
}

// dropRequest translates the target flags into a drop gesture. Keys are
// filled in once the references are resolved.
func (c *MoveCmd) dropRequest() (string, tree.DropRequest, bool) {
	set := 0
	for _, v := range []string{c.into, c.before, c.after} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", tree.DropRequest{}, false
	}
	switch {
	case c.into != "":
		return c.into, tree.DropRequest{}, true
	case c.before != "":
		return c.before, tree.DropRequest{DropToGap: true, DropPosition: -1}, true
	default:
		return c.after, tree.DropRequest{DropToGap: true, DropPosition: 1}, true
	}
}
