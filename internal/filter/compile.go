package filter

// SupportChecker reports whether a backend can natively evaluate a
// leaf filter operator. VectorBackend implementations satisfy this.
type SupportChecker interface {
	Supports(op FilterOp) bool
}

// CompileForBackend splits f into the subtree a backend can evaluate
// natively (pushdown) and the subtree the caller must still evaluate
// client-side (residual). Either return value may be nil, meaning
// "none": a fully pushdown-able filter has a nil residual, and a
// fully unsupported filter has a nil pushdown.
//
// And splits per-child: supported children move to pushdown,
// unsupported children stay in residual, independently. Or and Not
// cannot be split that way without changing their semantics, so each
// lifts into pushdown only when supported in its entirety; the one
// documented exception is Not(Leaf{op=eq}), rewritten to Leaf{op=ne}
// when the backend supports ne but not eq-negation directly.
func CompileForBackend(f Filter, backend SupportChecker) (pushdown, residual Filter) {
	if f == nil {
		return nil, nil
	}

	switch n := f.(type) {
	case Leaf:
		if backend.Supports(n.Op) {
			return n, nil
		}
		return nil, n

	case ContentMatch:
		// Backends in this algebra operate over metadata; content
		// matching is always evaluated client-side.
		return nil, n

	case Not:
		if leaf, ok := n.Child.(Leaf); ok && leaf.Op == OpEq && backend.Supports(OpNe) {
			return Leaf{Field: leaf.Field, Op: OpNe, Value: leaf.Value}, nil
		}
		childPD, childRes := CompileForBackend(n.Child, backend)
		if childRes == nil {
			return Not{Child: childPD}, nil
		}
		return nil, n

	case And:
		var pds, reses []Filter
		for _, c := range n.Children {
			pd, res := CompileForBackend(c, backend)
			if pd != nil {
				pds = append(pds, pd)
			}
			if res != nil {
				reses = append(reses, res)
			}
		}
		return combineAnd(pds), combineAnd(reses)

	case Or:
		// Or can only be pushed down whole: a partial pushdown would
		// silently drop the "or" across two separate evaluators.
		allPushed := true
		var pds []Filter
		for _, c := range n.Children {
			pd, res := CompileForBackend(c, backend)
			if res != nil {
				allPushed = false
				break
			}
			pds = append(pds, pd)
		}
		if allPushed {
			return combineOr(pds), nil
		}
		return nil, n

	default:
		return nil, f
	}
}

// combineAnd returns nil for an empty slice, the bare filter for a
// single element, or an And wrapping all elements.
func combineAnd(fs []Filter) Filter {
	switch len(fs) {
	case 0:
		return nil
	case 1:
		return fs[0]
	default:
		return And{Children: fs}
	}
}

// combineOr returns nil for an empty slice, the bare filter for a
// single element, or an Or wrapping all elements.
func combineOr(fs []Filter) Filter {
	switch len(fs) {
	case 0:
		return nil
	case 1:
		return fs[0]
	default:
		return Or{Children: fs}
	}
}
