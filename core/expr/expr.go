// Package expr builds ES|QL expression fragments: column references,
// literals, comparisons, boolean logic, arithmetic and function calls.
// Every value is an opaque, pre-rendered Expression that the query builder
// in the esql package trusts verbatim.
package expr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/asaidimu/go-esql/core/esql"
)

// Expression is a pre-rendered ES|QL expression fragment. It implements the
// esql.Expression interface; composing methods return new values and never
// mutate the receiver.
type Expression struct {
	text string
}

// Render returns the textual ES|QL form of the expression.
func (e Expression) Render() string {
	return e.text
}

// String returns the same text as Render.
func (e Expression) String() string {
	return e.text
}

// Raw wraps already-rendered expression text.
func Raw(text string) Expression {
	return Expression{text: text}
}

// Col references a column by name, quoting it when the name needs it.
func Col(name string) Expression {
	return Expression{text: esql.FormatIdentifier(name, false)}
}

// Lit renders a Go value as an ES|QL literal using strict JSON rules.
func Lit(value any) Expression {
	return Expression{text: render(value)}
}

// render produces the text of an operand: expressions render themselves,
// everything else follows literal rules.
func render(value any) string {
	if e, ok := value.(esql.Expression); ok {
		return e.Render()
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

func renderAll(values []any) []string {
	rendered := make([]string, len(values))
	for i, value := range values {
		rendered[i] = render(value)
	}
	return rendered
}

func (e Expression) binary(operator string, value any) Expression {
	return Expression{text: e.text + " " + operator + " " + render(value)}
}

// Eq compares the expression for equality with a value.
func (e Expression) Eq(value any) Expression { return e.binary("==", value) }

// Neq compares the expression for inequality with a value.
func (e Expression) Neq(value any) Expression { return e.binary("!=", value) }

// Lt compares the expression as less than a value.
func (e Expression) Lt(value any) Expression { return e.binary("<", value) }

// Lte compares the expression as less than or equal to a value.
func (e Expression) Lte(value any) Expression { return e.binary("<=", value) }

// Gt compares the expression as greater than a value.
func (e Expression) Gt(value any) Expression { return e.binary(">", value) }

// Gte compares the expression as greater than or equal to a value.
func (e Expression) Gte(value any) Expression { return e.binary(">=", value) }

// Add renders an addition.
func (e Expression) Add(value any) Expression { return e.binary("+", value) }

// Sub renders a subtraction.
func (e Expression) Sub(value any) Expression { return e.binary("-", value) }

// Mul renders a multiplication.
func (e Expression) Mul(value any) Expression { return e.binary("*", value) }

// Div renders a division.
func (e Expression) Div(value any) Expression { return e.binary("/", value) }

// Mod renders a modulo.
func (e Expression) Mod(value any) Expression { return e.binary("%", value) }

// And combines the expression with another under boolean AND. The result is
// parenthesized so it composes without precedence surprises.
func (e Expression) And(value any) Expression {
	return Expression{text: "(" + e.text + " AND " + render(value) + ")"}
}

// Or combines the expression with another under boolean OR. The result is
// parenthesized so it composes without precedence surprises.
func (e Expression) Or(value any) Expression {
	return Expression{text: "(" + e.text + " OR " + render(value) + ")"}
}

// Not negates a boolean expression.
func Not(value any) Expression {
	return Expression{text: "NOT " + render(value)}
}

// IsNull tests the expression for null.
func (e Expression) IsNull() Expression {
	return Expression{text: e.text + " IS NULL"}
}

// IsNotNull tests the expression for non-null.
func (e Expression) IsNotNull() Expression {
	return Expression{text: e.text + " IS NOT NULL"}
}

// In tests the expression for membership in a list of values.
func (e Expression) In(values ...any) Expression {
	return Expression{text: e.text + " IN (" + strings.Join(renderAll(values), ", ") + ")"}
}

// Like matches the expression against one or more wildcard patterns. A
// single pattern renders as a bare quoted string; several render as a
// parenthesized list.
func (e Expression) Like(patterns ...string) Expression {
	return e.match("LIKE", patterns)
}

// RLike matches the expression against one or more regular expressions,
// with the same one-or-many forms as Like.
func (e Expression) RLike(patterns ...string) Expression {
	return e.match("RLIKE", patterns)
}

func (e Expression) match(operator string, patterns []string) Expression {
	quoted := make([]string, len(patterns))
	for i, pattern := range patterns {
		quoted[i] = render(pattern)
	}
	if len(quoted) == 1 {
		return Expression{text: e.text + " " + operator + " " + quoted[0]}
	}
	return Expression{text: e.text + " " + operator + " (" + strings.Join(quoted, ", ") + ")"}
}

// Asc marks the expression as an ascending sort spec.
func (e Expression) Asc() Expression {
	return Expression{text: e.text + " ASC"}
}

// Desc marks the expression as a descending sort spec.
func (e Expression) Desc() Expression {
	return Expression{text: e.text + " DESC"}
}

// NullsFirst places null values first within a sort spec.
func (e Expression) NullsFirst() Expression {
	return Expression{text: e.text + " NULLS FIRST"}
}

// NullsLast places null values last within a sort spec.
func (e Expression) NullsLast() Expression {
	return Expression{text: e.text + " NULLS LAST"}
}

// Where attaches a post-filter to an aggregate expression. Only valid
// inside a STATS aggregation.
func (e Expression) Where(condition any) Expression {
	return Expression{text: e.text + " WHERE " + render(condition)}
}

// Call renders a function call with the given arguments.
func Call(name string, args ...any) Expression {
	return Expression{text: name + "(" + strings.Join(renderAll(args), ", ") + ")"}
}

// Count renders a COUNT aggregation; with no argument it counts all rows.
func Count(args ...any) Expression {
	if len(args) == 0 {
		return Expression{text: "COUNT(*)"}
	}
	return Call("COUNT", args...)
}

// Avg renders an AVG aggregation.
func Avg(value any) Expression { return Call("AVG", value) }

// Sum renders a SUM aggregation.
func Sum(value any) Expression { return Call("SUM", value) }

// Min renders a MIN aggregation.
func Min(value any) Expression { return Call("MIN", value) }

// Max renders a MAX aggregation.
func Max(value any) Expression { return Call("MAX", value) }

// Median renders a MEDIAN aggregation.
func Median(value any) Expression { return Call("MEDIAN", value) }

// Round renders a ROUND call.
func Round(value any, decimals any) Expression { return Call("ROUND", value, decimals) }

// Concat renders a CONCAT call.
func Concat(args ...any) Expression { return Call("CONCAT", args...) }
