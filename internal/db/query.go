package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Query builds an FT.SEARCH pre-filter from AND-ed clauses.
// The zero value matches everything.
type Query struct {
	parts []string
}

// Tag adds an exact TAG match. Empty values are ignored.
func (q Query) Tag(field, value string) Query {
	if value == "" {
		return q
	}
	q.parts = append(q.parts, fmt.Sprintf("@%s:{%s}", field, EscapeTag(value)))
	return q
}

// NumericEq adds an exact NUMERIC match.
func (q Query) NumericEq(field string, value int64) Query {
	v := strconv.FormatInt(value, 10)
	q.parts = append(q.parts, fmt.Sprintf("@%s:[%s %s]", field, v, v))
	return q
}

// NumericAbove adds an exclusive lower bound on a NUMERIC field.
func (q Query) NumericAbove(field string, lo int64) Query {
	q.parts = append(q.parts, fmt.Sprintf("@%s:[(%d +inf]", field, lo))
	return q
}

// String renders the query, "*" when there are no clauses.
func (q Query) String() string {
	if len(q.parts) == 0 {
		return "*"
	}
	return strings.Join(q.parts, " ")
}

// EscapeTag escapes TAG query punctuation.
func EscapeTag(s string) string {
	return tagEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
