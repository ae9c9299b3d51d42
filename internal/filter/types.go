// Package filter implements the boolean filter algebra over document
// metadata and content: leaf comparisons, conjunction/disjunction/
// negation, a pushdown compiler that splits a filter into the part a
// backend can evaluate natively and the residual the caller must
// still evaluate, and a client-side evaluator covering the full
// algebra.
package filter

import (
	"fmt"

	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
)

// FilterOp names a leaf comparison operator.
type FilterOp string

const (
	OpEq          FilterOp = "eq"
	OpNe          FilterOp = "ne"
	OpGt          FilterOp = "gt"
	OpGte         FilterOp = "gte"
	OpLt          FilterOp = "lt"
	OpLte         FilterOp = "lte"
	OpIn          FilterOp = "in"
	OpNotIn       FilterOp = "not_in"
	OpContains    FilterOp = "contains"
	OpNotContains FilterOp = "not_contains"
	OpStartsWith  FilterOp = "starts_with"
	OpEndsWith    FilterOp = "ends_with"
	OpRegex       FilterOp = "regex"
)

// comparisonOps require a scalar value and numeric-comparable fields.
var comparisonOps = map[FilterOp]bool{
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
}

// listOps require a list value.
var listOps = map[FilterOp]bool{
	OpIn: true, OpNotIn: true,
}

// Filter is the sealed algebra sum type: Leaf, And, Or, Not, and
// ContentMatch are its only variants.
type Filter interface {
	isFilter()
}

// Leaf compares a single metadata field against a value.
type Leaf struct {
	Field string
	Op    FilterOp
	Value any
}

func (Leaf) isFilter() {}

// And requires every child to match. Constructing with zero children
// is invalid.
type And struct {
	Children []Filter
}

func (And) isFilter() {}

// Or requires at least one child to match. Constructing with zero
// children is invalid.
type Or struct {
	Children []Filter
}

func (Or) isFilter() {}

// Not negates its single child.
type Not struct {
	Child Filter
}

func (Not) isFilter() {}

// ContentMatch tests a document's content directly, as opposed to its
// metadata. Regex, when true, interprets Substring as a Go regexp
// evaluated with Python re.search semantics: it matches if any
// substring of the content matches, not just the whole string.
type ContentMatch struct {
	Substring string
	Regex     bool
	Negate    bool
}

func (ContentMatch) isFilter() {}

// NewLeaf validates op/value arity before constructing a Leaf:
// comparison ops require a scalar value, in/not_in require a list
// value.
func NewLeaf(field string, op FilterOp, value any) (Filter, error) {
	if listOps[op] {
		if !isList(value) {
			return nil, searcherrors.FilterTypeMismatchError(fmt.Sprintf("op %q requires a list value", op))
		}
	} else if isList(value) {
		return nil, searcherrors.FilterTypeMismatchError(fmt.Sprintf("op %q requires a scalar value, got a list", op))
	}
	return Leaf{Field: field, Op: op, Value: value}, nil
}

// NewAnd validates that children is non-empty.
func NewAnd(children []Filter) (Filter, error) {
	if len(children) == 0 {
		return nil, searcherrors.FilterUnsupportedError("And requires at least one child")
	}
	return And{Children: children}, nil
}

// NewOr validates that children is non-empty.
func NewOr(children []Filter) (Filter, error) {
	if len(children) == 0 {
		return nil, searcherrors.FilterUnsupportedError("Or requires at least one child")
	}
	return Or{Children: children}, nil
}

// NewNot wraps exactly one child.
func NewNot(child Filter) (Filter, error) {
	if child == nil {
		return nil, searcherrors.FilterUnsupportedError("Not requires exactly one child")
	}
	return Not{Child: child}, nil
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []float64:
		return true
	default:
		return false
	}
}
