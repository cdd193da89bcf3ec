package prismic

import (
	"strconv"
	"strings"
)

// Predicate is a single query condition, e.g. at(document.type,"post").
type Predicate string

// At matches documents whose path equals value.
func At(path, value string) Predicate {
	return Predicate("[at(" + path + "," + strconv.Quote(value) + ")]")
}

// Any matches documents whose path equals one of values.
func Any(path string, values ...string) Predicate {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return Predicate("[any(" + path + ",[" + strings.Join(quoted, ",") + "])]")
}

// buildQuery joins predicates into the q parameter value.
func buildQuery(predicates []Predicate) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range predicates {
		b.WriteString(string(p))
	}
	b.WriteByte(']')
	return b.String()
}
