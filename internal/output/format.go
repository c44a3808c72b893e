// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasktree/internal/service"
	"tasktree/internal/tree"
)

// Indent is the per-level indentation of subtasks.
const Indent = "    "

// FormatTree writes one line per node in pre-order.
// Format: "{INDENT*depth}{PATH:>4}  {TITLE}\n", where PATH is the dotted
// reference accepted by the task commands.
func FormatTree(w io.Writer, forest []*tree.Node) {
	formatLevel(w, forest, nil)
}

func formatLevel(w io.Writer, siblings []*tree.Node, parent tree.Path) {
	for i, n := range siblings {
		path := append(parent[:len(parent):len(parent)], i+1)
		fmt.Fprintf(w, "%s%4s  %s\n", strings.Repeat(Indent, len(parent)), path, normalizeTitle(n.Title))
		formatLevel(w, n.Children, path)
	}
}

// FormatListName formats a list name for the lists command.
func FormatListName(w io.Writer, list service.TaskList) {
	title := normalizeListTitle(list.Title)
	if list.IsDefault {
		title += " [default]"
	}
	fmt.Fprintln(w, title)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
