// Package facet aggregates field-value counts over a result set,
// independent of how that result set was produced.
package facet

import (
	"fmt"
	"sort"
)

// DefaultTopFacetValues bounds how many (value, count) pairs a field
// reports.
const DefaultTopFacetValues = 10

// Doc is the minimal view a facet computation needs: metadata only,
// not content or score.
type Doc struct {
	Metadata map[string]any
}

// ValueCount is one distinct value and how many documents contributed
// it.
type ValueCount struct {
	Value string
	Count int
}

// Result is one field's facet: its top values by descending count
// (ties ascending by value), truncated to topFacetValues, plus the
// size of the result set the facet was computed over. Percentages are
// count/TotalDocs, not a share of this field's own counts, since
// list-valued fields can sum to more than TotalDocs.
type Result struct {
	Field      string
	Values     []ValueCount
	TotalDocs  int
}

// Compute builds one Result per requested field. A document whose
// metadata value for a field is a list contributes once per distinct
// element in that list; a scalar value contributes once.
func Compute(docs []Doc, fields []string, topFacetValues int) []Result {
	if topFacetValues <= 0 {
		topFacetValues = DefaultTopFacetValues
	}

	results := make([]Result, 0, len(fields))
	for _, field := range fields {
		counts := make(map[string]int)
		for _, d := range docs {
			for _, v := range distinctScalarStrings(d.Metadata[field]) {
				counts[v]++
			}
		}

		values := make([]ValueCount, 0, len(counts))
		for v, c := range counts {
			values = append(values, ValueCount{Value: v, Count: c})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		if len(values) > topFacetValues {
			values = values[:topFacetValues]
		}

		results = append(results, Result{
			Field:     field,
			Values:    values,
			TotalDocs: len(docs),
		})
	}
	return results
}

// distinctScalarStrings renders a metadata value (scalar or list of
// scalars) as a deduplicated set of string representations.
func distinctScalarStrings(v any) []string {
	if v == nil {
		return nil
	}

	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	case []string:
		for _, s := range t {
			raw = append(raw, s)
		}
	case []int:
		for _, n := range t {
			raw = append(raw, n)
		}
	case []float64:
		for _, f := range t {
			raw = append(raw, f)
		}
	default:
		raw = []any{v}
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s := scalarString(item)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
