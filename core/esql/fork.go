package esql

import (
	"fmt"
	"regexp"
	"strings"
)

// flattenIndent collapses any rendered line break and its indentation when a
// branch is folded onto a single line.
var flattenIndent = regexp.MustCompile(`\n *`)

// Fork runs between two and eight independent branches over the rows
// produced so far and unions their outputs. Each branch is a partial chain
// started with Branch. A chain may be forked at most once: a second fork
// anywhere in the ancestry is rejected at this call, not at render time.
func (c *Command) Fork(branches ...*Command) *Command {
	var err error
	switch {
	case c.forked():
		err = fmt.Errorf("a query chain may contain at most one fork command")
	case len(branches) < 2 || len(branches) > 8:
		err = fmt.Errorf("fork requires between 2 and 8 branches, got %d", len(branches))
	default:
		for i, branch := range branches {
			if _, ok := branch.root().stage.(*branchStage); !ok {
				err = fmt.Errorf("fork branch %d must be a chain started with Branch", i+1)
				break
			}
			if _, ok := branch.stage.(*branchStage); ok {
				err = fmt.Errorf("fork branch %d is empty", i+1)
				break
			}
		}
	}
	return c.derive(&forkStage{branches: branches}, err)
}

type forkStage struct {
	branches []*Command
}

func (s *forkStage) render() (string, error) {
	clauses := make([]string, len(s.branches))
	for i, branch := range s.branches {
		text, err := branch.Render()
		if err != nil {
			return "", fmt.Errorf("fork branch %d: %w", i+1, err)
		}
		text = strings.TrimPrefix(text, commandSeparator)
		text = strings.ReplaceAll(text, commandSeparator, " | ")
		text = flattenIndent.ReplaceAllString(text, " ")
		clauses[i] = "( " + text + " )"
	}
	return "FORK " + strings.Join(clauses, "\n       "), nil
}
