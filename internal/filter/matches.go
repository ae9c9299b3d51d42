package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Matches evaluates f against a document's content and metadata,
// covering the full algebra (client-side evaluation does not rely on
// backend support). A field absent from metadata is treated as
// missing: eq is false, ne is true, comparisons are false, and the
// not_ prefixed/negated containment ops are true — the field cannot
// satisfy a positive test, so its negation holds.
func Matches(f Filter, content string, metadata map[string]any) bool {
	switch n := f.(type) {
	case Leaf:
		return matchLeaf(n, metadata)
	case And:
		for _, c := range n.Children {
			if !Matches(c, content, metadata) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range n.Children {
			if Matches(c, content, metadata) {
				return true
			}
		}
		return false
	case Not:
		return !Matches(n.Child, content, metadata)
	case ContentMatch:
		return matchContent(n, content)
	default:
		return false
	}
}

func matchLeaf(l Leaf, metadata map[string]any) bool {
	value, present := metadata[l.Field]
	if !present {
		return missingFieldResult(l.Op)
	}

	switch l.Op {
	case OpEq:
		return equal(value, l.Value)
	case OpNe:
		return !equal(value, l.Value)
	case OpGt, OpGte, OpLt, OpLte:
		return compareNumeric(l.Op, value, l.Value)
	case OpIn:
		return containsElement(l.Value, value)
	case OpNotIn:
		return !containsElement(l.Value, value)
	case OpContains:
		s, svOK := stringOf(value)
		sub, subOK := stringOf(l.Value)
		return svOK && subOK && strings.Contains(s, sub)
	case OpNotContains:
		s, svOK := stringOf(value)
		sub, subOK := stringOf(l.Value)
		return !(svOK && subOK && strings.Contains(s, sub))
	case OpStartsWith:
		s, svOK := stringOf(value)
		prefix, pOK := stringOf(l.Value)
		return svOK && pOK && strings.HasPrefix(s, prefix)
	case OpEndsWith:
		s, svOK := stringOf(value)
		suffix, sOK := stringOf(l.Value)
		return svOK && sOK && strings.HasSuffix(s, suffix)
	case OpRegex:
		return matchRegex(value, l.Value)
	default:
		return false
	}
}

// missingFieldResult implements the spec's unknown-field semantics:
// positive tests fail, their negations succeed.
func missingFieldResult(op FilterOp) bool {
	switch op {
	case OpNe, OpNotIn, OpNotContains:
		return true
	default:
		return false
	}
}

func matchContent(cm ContentMatch, content string) bool {
	var matched bool
	if cm.Regex {
		re, err := regexp.Compile(cm.Substring)
		if err != nil {
			matched = false
		} else {
			// Go's regexp.MatchString already searches for any
			// matching substring, matching Python re.search semantics.
			matched = re.MatchString(content)
		}
	} else {
		matched = strings.Contains(content, cm.Substring)
	}
	if cm.Negate {
		return !matched
	}
	return matched
}

func equal(a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af == bf
	}
	as, asok := stringOf(a)
	bs, bsok := stringOf(b)
	if asok && bsok {
		return as == bs
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compareNumeric(op FilterOp, fieldValue, target any) bool {
	fv, ok1 := toFloat64(fieldValue)
	tv, ok2 := toFloat64(target)
	if !ok1 || !ok2 {
		return false
	}
	switch op {
	case OpGt:
		return fv > tv
	case OpGte:
		return fv >= tv
	case OpLt:
		return fv < tv
	case OpLte:
		return fv <= tv
	default:
		return false
	}
}

func containsElement(list any, target any) bool {
	switch l := list.(type) {
	case []any:
		for _, v := range l {
			if equal(v, target) {
				return true
			}
		}
	case []string:
		ts, ok := stringOf(target)
		if !ok {
			return false
		}
		for _, v := range l {
			if v == ts {
				return true
			}
		}
	case []int:
		tf, ok := toFloat64(target)
		if !ok {
			return false
		}
		for _, v := range l {
			if float64(v) == tf {
				return true
			}
		}
	case []float64:
		tf, ok := toFloat64(target)
		if !ok {
			return false
		}
		for _, v := range l {
			if v == tf {
				return true
			}
		}
	}
	return false
}

func matchRegex(fieldValue, pattern any) bool {
	s, ok := stringOf(fieldValue)
	if !ok {
		return false
	}
	p, ok := stringOf(pattern)
	if !ok {
		return false
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringOf(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
