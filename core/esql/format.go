package esql

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// commandSeparator joins consecutive pipeline stages in a rendered query.
const commandSeparator = "\n| "

// simpleIdentifier matches names the engine's lexer accepts without quoting.
var simpleIdentifier = regexp.MustCompile(`^[A-Za-z_@][A-Za-z0-9_.]*$`)

// FormatIdentifier renders a field, column or parameter name into a
// syntactically valid token. Names matching the simple identifier grammar
// pass through unchanged; anything else is backtick-quoted with embedded
// backticks doubled. When allowPatterns is true, names containing a
// wildcard are returned unescaped, since escaping a pattern would change
// its meaning. Pattern identifiers therefore bypass quoting entirely, and
// callers must only pass trusted patterns.
func FormatIdentifier(name string, allowPatterns bool) string {
	if allowPatterns && strings.Contains(name, "*") {
		return name
	}
	if simpleIdentifier.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func formatIdentifiers(names []string, allowPatterns bool) []string {
	formatted := make([]string, len(names))
	for i, name := range names {
		formatted[i] = FormatIdentifier(name, allowPatterns)
	}
	return formatted
}

// formatValue renders a value appearing in a literal position. Pre-built
// expressions render themselves; everything else is serialized with strict
// JSON literal rules, so strings are double-quoted and nil becomes null.
func formatValue(value any) (string, error) {
	if expr, ok := value.(Expression); ok {
		return expr.Render(), nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("value of type %T cannot be rendered as a literal: %w", value, err)
	}
	return string(encoded), nil
}

// formatExpression renders a value appearing in an expression position.
// Plain strings are trusted as pre-rendered expression text; all other
// values follow literal rules.
func formatExpression(value any) (string, error) {
	switch v := value.(type) {
	case Expression:
		return v.Render(), nil
	case string:
		return v, nil
	default:
		return formatValue(value)
	}
}

func formatExpressions(values []any) ([]string, error) {
	formatted := make([]string, len(values))
	for i, value := range values {
		text, err := formatExpression(value)
		if err != nil {
			return nil, err
		}
		formatted[i] = text
	}
	return formatted, nil
}

// quoteString renders a string as a double-quoted JSON literal.
func quoteString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}

// resolveIndex turns an index reference into its textual index or alias
// name. References are resolved at render time, not at construction time.
func resolveIndex(index any) (string, error) {
	switch v := index.(type) {
	case string:
		return v, nil
	case IndexProvider:
		return v.IndexName(), nil
	default:
		return "", fmt.Errorf("index reference must be a string or IndexProvider, got %T", index)
	}
}

func resolveIndices(indices []any) ([]string, error) {
	names := make([]string, len(indices))
	for i, index := range indices {
		name, err := resolveIndex(index)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}
