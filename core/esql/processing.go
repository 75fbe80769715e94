package esql

import (
	"fmt"
	"strconv"
	"strings"
)

// Where filters rows by one or more boolean expressions. Multiple
// expressions are implicitly combined with AND. Plain strings are trusted
// as pre-rendered expression text.
func (c *Command) Where(expressions ...any) *Command {
	var err error
	if len(expressions) == 0 {
		err = fmt.Errorf("where requires at least one expression")
	}
	return c.derive(&whereStage{expressions: expressions}, err)
}

type whereStage struct {
	expressions []any
}

func (s *whereStage) render() (string, error) {
	rendered, err := formatExpressions(s.expressions)
	if err != nil {
		return "", err
	}
	return "WHERE " + strings.Join(rendered, " AND "), nil
}

// Keep projects the result down to the named columns. Wildcard patterns are
// passed through unescaped.
func (c *Command) Keep(columns ...string) *Command {
	var err error
	if len(columns) == 0 {
		err = fmt.Errorf("keep requires at least one column")
	}
	return c.derive(&projectStage{keyword: "KEEP", columns: columns}, err)
}

// Drop removes the named columns from the result. Wildcard patterns are
// passed through unescaped.
func (c *Command) Drop(columns ...string) *Command {
	var err error
	if len(columns) == 0 {
		err = fmt.Errorf("drop requires at least one column")
	}
	return c.derive(&projectStage{keyword: "DROP", columns: columns}, err)
}

type projectStage struct {
	keyword string
	columns []string
}

func (s *projectStage) render() (string, error) {
	return s.keyword + " " + strings.Join(formatIdentifiers(s.columns, true), ", "), nil
}

// Rename gives columns new names. Pairs are built with As and rendered in
// the order given.
func (c *Command) Rename(pairs ...RenamePair) *Command {
	var err error
	if len(pairs) == 0 {
		err = fmt.Errorf("rename requires at least one pair")
	}
	return c.derive(&renameStage{pairs: pairs}, err)
}

type renameStage struct {
	pairs []RenamePair
}

func (s *renameStage) render() (string, error) {
	parts := make([]string, len(s.pairs))
	for i, pair := range s.pairs {
		parts[i] = FormatIdentifier(pair.Old, false) + " AS " + FormatIdentifier(pair.New, false)
	}
	return "RENAME " + strings.Join(parts, ", "), nil
}

// Sort orders rows by one or more column specs. A spec may carry direction
// and null-placement keywords, as in "first_name ASC" or an expression
// built with Desc or NullsLast. Each whitespace-separated token of a spec
// is formatted independently, so the keywords stay unquoted while an odd
// column name is still escaped.
func (c *Command) Sort(columns ...any) *Command {
	var err error
	if len(columns) == 0 {
		err = fmt.Errorf("sort requires at least one column")
	}
	return c.derive(&sortStage{columns: columns}, err)
}

type sortStage struct {
	columns []any
}

func (s *sortStage) render() (string, error) {
	specs := make([]string, len(s.columns))
	for i, column := range s.columns {
		text, err := formatExpression(column)
		if err != nil {
			return "", err
		}
		tokens := strings.Fields(text)
		for j, token := range tokens {
			tokens[j] = FormatIdentifier(token, false)
		}
		specs[i] = strings.Join(tokens, " ")
	}
	return "SORT " + strings.Join(specs, ", "), nil
}

// Limit caps the number of rows returned.
func (c *Command) Limit(limit int) *Command {
	var err error
	if limit < 0 {
		err = fmt.Errorf("limit cannot be negative, got %d", limit)
	}
	return c.derive(&limitStage{limit: limit}, err)
}

type limitStage struct {
	limit int
}

func (s *limitStage) render() (string, error) {
	return "LIMIT " + strconv.Itoa(s.limit), nil
}

// StatsCommand is the aggregation command. By may be chained to supply
// grouping expressions.
type StatsCommand struct {
	Command
}

// Stats aggregates rows. Aggregations are given either positionally or as
// named expressions built with Named; mixing the two forms is a
// construction error.
func (c *Command) Stats(aggregations ...any) *StatsCommand {
	positional, named, err := splitArguments("stats", aggregations)
	return &StatsCommand{newCommand(c, &statsStage{
		aggregations: positional,
		named:        named,
	}, err)}
}

// By supplies the grouping expressions for the aggregation, rendered as a
// BY clause on a second indented line.
func (c *StatsCommand) By(groupings ...any) *StatsCommand {
	s := c.stage.(*statsStage)
	s.groupings = append(s.groupings, groupings...)
	return c
}

type statsStage struct {
	aggregations []any
	named        []NamedExpression
	groupings    []any
}

func (s *statsStage) render() (string, error) {
	parts, err := renderAssignments(s.aggregations, s.named)
	if err != nil {
		return "", err
	}
	out := "STATS"
	if len(parts) > 0 {
		out += " " + strings.Join(parts, ", ")
	}
	if len(s.groupings) > 0 {
		groupings, err := formatExpressions(s.groupings)
		if err != nil {
			return "", err
		}
		out += "\n        BY " + strings.Join(groupings, ", ")
	}
	return out, nil
}

// renderAssignments renders either the positional or the named form of a
// command's expression list. Exactly one of the two slices is non-empty.
func renderAssignments(positional []any, named []NamedExpression) ([]string, error) {
	if len(named) > 0 {
		parts := make([]string, len(named))
		for i, n := range named {
			text, err := formatExpression(n.Value)
			if err != nil {
				return nil, err
			}
			parts[i] = FormatIdentifier(n.Name, false) + " = " + text
		}
		return parts, nil
	}
	return formatExpressions(positional)
}

// Eval computes new columns. Expressions are given either positionally or
// as named expressions built with Named; mixing the two forms is a
// construction error.
func (c *Command) Eval(expressions ...any) *Command {
	positional, named, err := splitArguments("eval", expressions)
	if err == nil && len(positional) == 0 && len(named) == 0 {
		err = fmt.Errorf("eval requires at least one expression")
	}
	return c.derive(&evalStage{expressions: positional, named: named}, err)
}

type evalStage struct {
	expressions []any
	named       []NamedExpression
}

func (s *evalStage) render() (string, error) {
	parts, err := renderAssignments(s.expressions, s.named)
	if err != nil {
		return "", err
	}
	return "EVAL " + strings.Join(parts, ", "), nil
}

// EnrichCommand is the enrichment-join command. On and With may be chained
// to set the match field and the enrich columns.
type EnrichCommand struct {
	Command
}

// Enrich joins rows against the named enrich policy.
func (c *Command) Enrich(policy string) *EnrichCommand {
	var err error
	if policy == "" {
		err = fmt.Errorf("enrich requires a policy name")
	}
	return &EnrichCommand{newCommand(c, &enrichStage{policy: policy}, err)}
}

// On sets the column the policy is matched against. When omitted, the
// policy's own match field applies.
func (c *EnrichCommand) On(matchField string) *EnrichCommand {
	s := c.stage.(*enrichStage)
	s.matchField = matchField
	return c
}

// With selects the columns added by the enrichment. Columns are given
// either as plain field names or as named mappings built with Named, where
// the name is the new column and the value the enrich field; mixing the two
// forms is a construction error.
func (c *EnrichCommand) With(columns ...any) *EnrichCommand {
	s := c.stage.(*enrichStage)
	for _, column := range columns {
		switch v := column.(type) {
		case NamedExpression:
			s.withNamed = append(s.withNamed, v)
		case string:
			s.withColumns = append(s.withColumns, v)
		default:
			c.setErr(fmt.Errorf("enrich WITH accepts field names or named mappings, got %T", column))
		}
	}
	if len(s.withColumns) > 0 && len(s.withNamed) > 0 {
		c.setErr(fmt.Errorf("enrich WITH accepts either positional fields or named mappings, not both"))
	}
	return c
}

type enrichStage struct {
	policy      string
	matchField  string
	withColumns []string
	withNamed   []NamedExpression
}

func (s *enrichStage) render() (string, error) {
	out := "ENRICH " + s.policy
	if s.matchField != "" {
		out += " ON " + FormatIdentifier(s.matchField, false)
	}
	if len(s.withNamed) > 0 {
		parts := make([]string, len(s.withNamed))
		for i, n := range s.withNamed {
			field, err := enrichField(n.Value)
			if err != nil {
				return "", err
			}
			parts[i] = FormatIdentifier(n.Name, false) + " = " + field
		}
		out += " WITH " + strings.Join(parts, ", ")
	} else if len(s.withColumns) > 0 {
		out += " WITH " + strings.Join(formatIdentifiers(s.withColumns, false), ", ")
	}
	return out, nil
}

func enrichField(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return FormatIdentifier(v, false), nil
	case Expression:
		return v.Render(), nil
	default:
		return "", fmt.Errorf("enrich WITH mapping must name a field, got %T", value)
	}
}

// LookupJoinCommand is the lookup-join command. The On continuation is
// mandatory; rendering fails without it.
type LookupJoinCommand struct {
	Command
}

// LookupJoin joins rows against a lookup-mode index. The match field must
// be supplied with On before the query is rendered.
func (c *Command) LookupJoin(index any) *LookupJoinCommand {
	return &LookupJoinCommand{newCommand(c, &lookupJoinStage{index: index}, nil)}
}

// On sets the column the lookup index is joined on.
func (c *LookupJoinCommand) On(matchField string) *LookupJoinCommand {
	s := c.stage.(*lookupJoinStage)
	s.matchField = matchField
	return c
}

type lookupJoinStage struct {
	index      any
	matchField string
}

func (s *lookupJoinStage) render() (string, error) {
	if s.matchField == "" {
		return "", fmt.Errorf("lookup join requires an ON clause before rendering")
	}
	name, err := resolveIndex(s.index)
	if err != nil {
		return "", err
	}
	return "LOOKUP JOIN " + name + " ON " + FormatIdentifier(s.matchField, false), nil
}

// MvExpand expands a multi-value column into one row per value.
func (c *Command) MvExpand(column string) *Command {
	var err error
	if column == "" {
		err = fmt.Errorf("mv_expand requires a column")
	}
	return c.derive(&mvExpandStage{column: column}, err)
}

type mvExpandStage struct {
	column string
}

func (s *mvExpandStage) render() (string, error) {
	return "MV_EXPAND " + FormatIdentifier(s.column, false), nil
}

// Sample keeps a random fraction of the rows. The probability must lie
// strictly between 0 and 1.
func (c *Command) Sample(probability float64) *Command {
	var err error
	if probability <= 0 || probability >= 1 {
		err = fmt.Errorf("sample probability must be between 0 and 1 exclusive, got %v", probability)
	}
	return c.derive(&sampleStage{probability: probability}, err)
}

type sampleStage struct {
	probability float64
}

func (s *sampleStage) render() (string, error) {
	return "SAMPLE " + strconv.FormatFloat(s.probability, 'g', -1, 64), nil
}

// DissectCommand is the dissect pattern-extraction command. An append
// separator may be chained for patterns with repeated keys.
type DissectCommand struct {
	Command
}

// Dissect extracts new columns from a string column by matching a dissect
// pattern against it. The input may be a column name or a pre-built
// expression; the pattern is rendered as a quoted string.
func (c *Command) Dissect(input any, pattern string) *DissectCommand {
	var err error
	if pattern == "" {
		err = fmt.Errorf("dissect requires a pattern")
	}
	return &DissectCommand{newCommand(c, &dissectStage{input: input, pattern: pattern}, err)}
}

// AppendSeparator sets the string inserted between values appended to the
// same key.
func (c *DissectCommand) AppendSeparator(separator string) *DissectCommand {
	s := c.stage.(*dissectStage)
	s.appendSeparator = separator
	return c
}

type dissectStage struct {
	input           any
	pattern         string
	appendSeparator string
}

func (s *dissectStage) render() (string, error) {
	input, err := inputColumn(s.input)
	if err != nil {
		return "", err
	}
	out := "DISSECT " + input + " " + quoteString(s.pattern)
	if s.appendSeparator != "" {
		out += " APPEND_SEPARATOR=" + quoteString(s.appendSeparator)
	}
	return out, nil
}

// Grok extracts new columns from a string column by matching a grok pattern
// against it.
func (c *Command) Grok(input any, pattern string) *Command {
	var err error
	if pattern == "" {
		err = fmt.Errorf("grok requires a pattern")
	}
	return c.derive(&grokStage{input: input, pattern: pattern}, err)
}

type grokStage struct {
	input   any
	pattern string
}

func (s *grokStage) render() (string, error) {
	input, err := inputColumn(s.input)
	if err != nil {
		return "", err
	}
	return "GROK " + input + " " + quoteString(s.pattern), nil
}

func inputColumn(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return FormatIdentifier(v, false), nil
	case Expression:
		return v.Render(), nil
	default:
		return "", fmt.Errorf("input must be a column name or expression, got %T", value)
	}
}

// Default output column names for ChangePoint.
const (
	changePointTypeName   = "type"
	changePointPvalueName = "pvalue"
)

// ChangePointCommand is the change-point-detection command. On and As may
// be chained to override the key column and the output column names.
type ChangePointCommand struct {
	Command
}

// ChangePoint detects spikes, dips and change points in the value column.
// The key defaults to the implicit time column and the output columns to
// "type" and "pvalue"; clauses matching the defaults are elided.
func (c *Command) ChangePoint(value string) *ChangePointCommand {
	var err error
	if value == "" {
		err = fmt.Errorf("change_point requires a value column")
	}
	return &ChangePointCommand{newCommand(c, &changePointStage{
		value:      value,
		typeName:   changePointTypeName,
		pvalueName: changePointPvalueName,
	}, err)}
}

// On sets the column the values are sorted on for detection.
func (c *ChangePointCommand) On(key string) *ChangePointCommand {
	s := c.stage.(*changePointStage)
	s.key = key
	return c
}

// As sets the names of the output columns holding the change point type and
// its p-value.
func (c *ChangePointCommand) As(typeName, pvalueName string) *ChangePointCommand {
	if typeName == "" || pvalueName == "" {
		c.setErr(fmt.Errorf("change_point AS requires both output column names"))
		return c
	}
	s := c.stage.(*changePointStage)
	s.typeName = typeName
	s.pvalueName = pvalueName
	return c
}

type changePointStage struct {
	value      string
	key        string
	typeName   string
	pvalueName string
}

func (s *changePointStage) render() (string, error) {
	out := "CHANGE_POINT " + FormatIdentifier(s.value, false)
	if s.key != "" {
		out += " ON " + FormatIdentifier(s.key, false)
	}
	if s.typeName != changePointTypeName || s.pvalueName != changePointPvalueName {
		out += " AS " + FormatIdentifier(s.typeName, false) + ", " + FormatIdentifier(s.pvalueName, false)
	}
	return out, nil
}

// CompletionCommand is the LLM-completion command. The With continuation
// naming the inference endpoint is mandatory; rendering fails without it.
type CompletionCommand struct {
	Command
}

// Completion sends a prompt through an inference endpoint, writing the
// result to a new column. Exactly one prompt must be given, either
// positionally or as a single named expression built with Named, where the
// name is the output column.
func (c *Command) Completion(prompt ...any) *CompletionCommand {
	s := &completionStage{}
	var err error
	switch {
	case len(prompt) != 1:
		err = fmt.Errorf("completion requires exactly one prompt, got %d", len(prompt))
	default:
		if n, ok := prompt[0].(NamedExpression); ok {
			s.column = n.Name
			s.prompt = n.Value
		} else {
			s.prompt = prompt[0]
		}
	}
	return &CompletionCommand{newCommand(c, s, err)}
}

// With sets the id of the inference endpoint the prompt is sent to.
func (c *CompletionCommand) With(inferenceID string) *CompletionCommand {
	s := c.stage.(*completionStage)
	s.inferenceID = inferenceID
	return c
}

type completionStage struct {
	column      string
	prompt      any
	inferenceID string
}

func (s *completionStage) render() (string, error) {
	if s.inferenceID == "" {
		return "", fmt.Errorf("completion requires a WITH inference id before rendering")
	}
	prompt, err := formatExpression(s.prompt)
	if err != nil {
		return "", err
	}
	out := "COMPLETION "
	if s.column != "" {
		out += FormatIdentifier(s.column, false) + " = "
	}
	out += prompt + ` WITH {"inference_id": ` + quoteString(s.inferenceID) + `}`
	return out, nil
}
