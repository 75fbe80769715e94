// Package esql provides a fluent API for composing ES|QL pipeline queries
// and rendering them into the exact textual form the query engine expects.
// A query is an immutable chain of commands: every fluent call returns a new
// command whose parent is the command it was called on, and rendering walks
// the chain back to its source command, joining the stages with the pipe
// separator.
//
// The package only composes and renders text. Sending the rendered query to
// an engine, and decoding its response, belongs to the client package.
package esql

// Expression is implemented by pre-built expression objects such as column
// references, function calls, and composed sub-expressions. The rendered
// text is trusted verbatim: the implementation is responsible for producing
// syntactically valid ES|QL, including any quoting of its own operands.
type Expression interface {
	Render() string
}

// IndexProvider is implemented by handles that resolve to an index or alias
// name, such as mapped document types. Resolution happens at render time,
// so the index associated with a handle may be reassigned any time before
// the query is rendered.
type IndexProvider interface {
	IndexName() string
}

// NamedExpression pairs a result column name with the expression that
// produces it. It is the keyword form accepted by commands that take either
// positional or named expressions, such as Stats, Eval and Completion.
type NamedExpression struct {
	Name  string
	Value any
}

// Named creates a NamedExpression for keyword-style command arguments.
func Named(name string, value any) NamedExpression {
	return NamedExpression{Name: name, Value: value}
}

// RenamePair describes a single old-name to new-name column mapping for the
// Rename command.
type RenamePair struct {
	Old string
	New string
}

// As creates a RenamePair mapping an existing column name to a new one.
func As(oldName, newName string) RenamePair {
	return RenamePair{Old: oldName, New: newName}
}
