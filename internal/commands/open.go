package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"tasktree/internal/config"
	"tasktree/internal/exitcode"
	"tasktree/internal/logging"
	"tasktree/internal/service"
	"tasktree/internal/session"
	"tasktree/internal/tree"
)

// listFlag is embedded by commands that operate on one list.
type listFlag struct {
	listName string
}

// SetListName sets the list name (for testing).
func (l *listFlag) SetListName(name string) {
	l.listName = name
}

func (l *listFlag) register(fs *pflag.FlagSet) {
	fs.StringVarP(&l.listName, "list", "l", "", "")
}

// resolveList picks the list named by --list, then the configured
// default_list, then the account's default list.
func resolveList(ctx context.Context, cfg *config.Config, svc service.Service, name string, errOut io.Writer) (service.TaskList, int) {
	if name == "" {
		name = cfg.Settings.DefaultList
	}
	if name == "" {
		list, err := svc.DefaultList(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return service.TaskList{}, exitcode.BackendError
		}
		return list, exitcode.Success
	}

	list, err := svc.ResolveList(ctx, name)
	switch {
	case err == nil:
		return list, exitcode.Success
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: list not found: %s\n", name)
		return service.TaskList{}, exitcode.UserError
	case errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", name)
		return service.TaskList{}, exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return service.TaskList{}, exitcode.BackendError
	}
}

// openSession resolves the list and loads it into a session. On failure
// the error is already reported and the exit code is non-zero.
func openSession(ctx context.Context, cfg *config.Config, svc service.Service, listName string, errOut io.Writer) (*session.Session, int) {
	list, code := resolveList(ctx, cfg, svc, listName, errOut)
	if code != exitcode.Success {
		return nil, code
	}
	logger := logging.New(errOut, cfg.LogLevel())
	s, err := session.Open(ctx, svc, list.ID, cfg.Settings, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return nil, exitcode.BackendError
	}
	return s, exitcode.Success
}

// closeSession writes pending changes. The write must finish even when
// ctx is cancelled by an interrupt.
func closeSession(ctx context.Context, s *session.Session, errOut io.Writer) int {
	if err := s.Close(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// resolveRef maps a task reference argument to a node key.
func resolveRef(s *session.Session, ref string, errOut io.Writer) (string, int) {
	key, err := s.Resolve(ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
		return "", exitcode.UserError
	}
	return key, exitcode.Success
}

// reportTreeError prints an error returned by a session edit.
func reportTreeError(err error, errOut io.Writer) int {
	switch {
	case errors.Is(err, tree.ErrDropIntoDescendant):
		fmt.Fprintln(errOut, "error: cannot move a task into its own subtasks")
		return exitcode.UserError
	case errors.Is(err, tree.ErrNodeNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// joinTitle joins positional arguments into a title.
func joinTitle(args []string) (string, bool) {
	title := strings.Join(args, " ")
	return title, strings.TrimSpace(title) != ""
}

func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
