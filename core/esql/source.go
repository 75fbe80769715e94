package esql

import (
	"fmt"
	"strings"
)

// FromCommand is the read-from-index source command. Metadata may be
// chained to request engine metadata fields alongside the document columns.
type FromCommand struct {
	Command
}

// From starts a query chain reading from one or more indices. Each index
// may be a plain name string (patterns such as "logs-*" are passed through
// untouched) or any IndexProvider handle, resolved when the query is
// rendered.
func From(indices ...any) *FromCommand {
	var err error
	if len(indices) == 0 {
		err = fmt.Errorf("from requires at least one index")
	}
	return &FromCommand{newCommand(nil, &fromStage{indices: indices}, err)}
}

// Metadata requests engine metadata fields, rendered as a METADATA clause
// after the index list.
func (c *FromCommand) Metadata(fields ...string) *FromCommand {
	s := c.stage.(*fromStage)
	s.metadataFields = append(s.metadataFields, fields...)
	return c
}

type fromStage struct {
	indices        []any
	metadataFields []string
}

func (s *fromStage) render() (string, error) {
	names, err := resolveIndices(s.indices)
	if err != nil {
		return "", err
	}
	out := "FROM " + strings.Join(names, ", ")
	if len(s.metadataFields) > 0 {
		out += " METADATA " + strings.Join(formatIdentifiers(s.metadataFields, false), ", ")
	}
	return out, nil
}

// Row starts a query chain producing a single literal row. Values follow
// strict JSON literal rules, so strings are double-quoted and nil renders
// as null; pre-built expressions render themselves.
func Row(values ...NamedExpression) *Command {
	var err error
	if len(values) == 0 {
		err = fmt.Errorf("row requires at least one named value")
	}
	cmd := newCommand(nil, &rowStage{values: values}, err)
	return &cmd
}

type rowStage struct {
	values []NamedExpression
}

func (s *rowStage) render() (string, error) {
	parts := make([]string, len(s.values))
	for i, value := range s.values {
		text, err := formatValue(value.Value)
		if err != nil {
			return "", err
		}
		parts[i] = FormatIdentifier(value.Name, false) + " = " + text
	}
	return "ROW " + strings.Join(parts, ", "), nil
}

// Show starts an introspection query chain for the given item, such as
// "INFO".
func Show(item string) *Command {
	var err error
	if item == "" {
		err = fmt.Errorf("show requires an item")
	}
	cmd := newCommand(nil, &showStage{item: item}, err)
	return &cmd
}

type showStage struct {
	item string
}

func (s *showStage) render() (string, error) {
	return "SHOW " + s.item, nil
}

// Branch starts a parent-less partial chain for use as a fork branch. A
// branch chain is rendered only as part of its enclosing fork command,
// never standalone.
func Branch() *Command {
	cmd := newCommand(nil, &branchStage{}, nil)
	return &cmd
}

type branchStage struct{}

func (s *branchStage) render() (string, error) {
	return "", nil
}
