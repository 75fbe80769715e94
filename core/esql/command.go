package esql

import "fmt"

// stage produces the textual form of a single pipeline command, without the
// separator or any ancestor text.
type stage interface {
	render() (string, error)
}

// Command is one stage in a pipeline query chain. Each fluent call derives a
// new Command whose parent is the receiver; the parent pointer is set at
// construction and never reassigned, so a fully constructed chain is safe to
// share read-only and to reuse as a common prefix for several derived
// chains. Continuation methods (Metadata, By, On, With, As and friends)
// mutate only the command they were called on and are meant for the tail of
// a chain that is still being built; they are not safe to call concurrently
// with Render on an overlapping chain.
type Command struct {
	parent *Command
	stage  stage
	err    error
}

func newCommand(parent *Command, s stage, err error) Command {
	return Command{parent: parent, stage: s, err: err}
}

// derive appends a new stage to the chain and returns it as the new tail.
func (c *Command) derive(s stage, err error) *Command {
	cmd := newCommand(c, s, err)
	return &cmd
}

// setErr records a construction error on the command. The first error wins;
// later misuse of an already broken command is not reported.
func (c *Command) setErr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Err reports the first construction error recorded anywhere in the chain,
// or nil if the chain is well formed so far. Errors are available at the
// offending call, before any rendering is attempted.
func (c *Command) Err() error {
	var first error
	for node := c; node != nil; node = node.parent {
		if node.err != nil {
			first = node.err
		}
	}
	return first
}

// forked reports whether the chain already contains a fork command,
// anywhere between the receiver and the source command.
func (c *Command) forked() bool {
	for node := c; node != nil; node = node.parent {
		if _, ok := node.stage.(*forkStage); ok {
			return true
		}
	}
	return false
}

// root returns the source end of the chain.
func (c *Command) root() *Command {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Render produces the complete textual query for the chain ending at the
// receiver. Each ancestor is rendered exactly once, top-down, joined with
// the pipe separator. Rendering is a pure function of the chain's
// configuration: calling it twice without intervening continuation calls
// yields identical output.
func (c *Command) Render() (string, error) {
	if err := c.Err(); err != nil {
		return "", err
	}
	return c.renderChain()
}

func (c *Command) renderChain() (string, error) {
	own, err := c.stage.render()
	if err != nil {
		return "", err
	}
	if c.parent == nil {
		return own, nil
	}
	prefix, err := c.parent.renderChain()
	if err != nil {
		return "", err
	}
	return prefix + commandSeparator + own, nil
}

// splitArguments separates a mixed argument list into its positional and
// named forms. The two forms are mutually exclusive; supplying both is a
// construction error for every command that accepts them.
func splitArguments(command string, args []any) ([]any, []NamedExpression, error) {
	var positional []any
	var named []NamedExpression
	for _, arg := range args {
		if n, ok := arg.(NamedExpression); ok {
			named = append(named, n)
		} else {
			positional = append(positional, arg)
		}
	}
	if len(positional) > 0 && len(named) > 0 {
		return nil, nil, fmt.Errorf("%s accepts either positional or named expressions, not both", command)
	}
	return positional, named, nil
}
