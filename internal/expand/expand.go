// Package expand implements deterministic, offline query expansion
// over a static domain lexicon: term-level synonym/abbreviation
// lookup and template-based query reformulation. Nothing here calls a
// network or a model; an LLM-backed expander is a different
// implementation of the same interface, not a mode of this one.
package expand

import (
	"strings"

	"github.com/opendocs-search/hybridcore/internal/tokenizer"
)

// Strategy names the expansion path taken for a query.
type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyDomain     Strategy = "domain"
	StrategySynonyms   Strategy = "synonyms"
	StrategyMultiQuery Strategy = "multi_query"
	StrategyAuto       Strategy = "auto"
)

// DefaultMaxExpansions and DefaultMaxVariations bound how many terms
// or reformulated queries an expansion strategy adds.
const (
	DefaultMaxExpansions = 5
	DefaultMaxVariations = 3
)

// variationTemplates are the fixed suffixes multi_query appends to the
// original query to produce reformulated alternatives.
var variationTemplates = []string{"guide", "tutorial", "reference", "example", "overview"}

var whWords = map[string]bool{
	"who": true, "what": true, "when": true, "where": true,
	"why": true, "how": true, "which": true,
}

// Expanded is the result of expanding one query.
type Expanded struct {
	Original   string
	Terms      []string
	Variations []string
	Method     Strategy
	Confidence float64
}

// Expander expands queries against a fixed, build-time lexicon.
type Expander struct {
	domainExpansions map[string][]string
	abbreviations    map[string]string
	maxExpansions    int
	maxVariations    int
}

// Option configures an Expander.
type Option func(*Expander)

// WithMaxExpansions overrides the per-term expansion cap.
func WithMaxExpansions(n int) Option {
	return func(e *Expander) { e.maxExpansions = n }
}

// WithMaxVariations overrides the multi_query reformulation cap.
func WithMaxVariations(n int) Option {
	return func(e *Expander) { e.maxVariations = n }
}

// WithLexicon overrides the domain expansions and abbreviations,
// mainly for tests; production callers use the package defaults.
func WithLexicon(domain map[string][]string, abbreviations map[string]string) Option {
	return func(e *Expander) {
		e.domainExpansions = domain
		e.abbreviations = abbreviations
	}
}

// New creates an Expander over the package's default lexicon.
func New(opts ...Option) *Expander {
	e := &Expander{
		domainExpansions: DomainExpansions,
		abbreviations:     Abbreviations,
		maxExpansions:     DefaultMaxExpansions,
		maxVariations:     DefaultMaxVariations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand applies the named strategy to query. StrategyAuto picks
// among multi_query/domain/synonyms per the query's shape before
// delegating.
func (e *Expander) Expand(query string, strategy Strategy) Expanded {
	switch strategy {
	case StrategyAuto:
		return e.Expand(query, e.pickAutoStrategy(query))
	case StrategyDomain:
		return e.expandDomain(query)
	case StrategySynonyms:
		return e.expandSynonyms(query)
	case StrategyMultiQuery:
		return e.expandMultiQuery(query)
	default:
		return Expanded{Original: query, Method: StrategyNone, Confidence: 1.0}
	}
}

func (e *Expander) pickAutoStrategy(query string) Strategy {
	trimmed := strings.TrimSpace(query)
	if strings.Contains(trimmed, "?") || startsWithWhWord(trimmed) {
		return StrategyMultiQuery
	}
	for _, tok := range tokenizer.Tokenize(query) {
		if _, ok := e.domainExpansions[tok]; ok {
			return StrategyDomain
		}
	}
	return StrategySynonyms
}

func startsWithWhWord(query string) bool {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return false
	}
	return whWords[fields[0]]
}

// expandDomain appends up to maxExpansions unique domain terms per
// query token, preserving first-seen insertion order.
func (e *Expander) expandDomain(query string) Expanded {
	tokens := tokenizer.Tokenize(query)
	seen := make(map[string]bool, len(tokens))
	terms := make([]string, 0, len(tokens))

	addUnique := func(t string) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	for _, tok := range tokens {
		addUnique(tok)
	}
	for _, tok := range tokens {
		added := 0
		for _, syn := range e.domainExpansions[tok] {
			if added >= e.maxExpansions {
				break
			}
			if !seen[syn] {
				addUnique(syn)
				added++
			}
		}
	}

	return Expanded{Original: query, Terms: terms, Method: StrategyDomain, Confidence: 1.0}
}

// expandSynonyms layers abbreviation expansion on top of domain
// expansion.
func (e *Expander) expandSynonyms(query string) Expanded {
	base := e.expandDomain(query)
	seen := make(map[string]bool, len(base.Terms))
	for _, t := range base.Terms {
		seen[t] = true
	}

	tokens := tokenizer.Tokenize(query)
	for _, tok := range tokens {
		long, ok := e.abbreviations[tok]
		if !ok {
			continue
		}
		for _, word := range strings.Fields(long) {
			if !seen[word] {
				seen[word] = true
				base.Terms = append(base.Terms, word)
			}
		}
	}

	base.Method = StrategySynonyms
	return base
}

// expandMultiQuery appends up to maxVariations fixed-template
// reformulations of the original query.
func (e *Expander) expandMultiQuery(query string) Expanded {
	trimmed := strings.TrimSpace(query)
	variations := make([]string, 0, e.maxVariations)
	for i, tmpl := range variationTemplates {
		if i >= e.maxVariations {
			break
		}
		variations = append(variations, trimmed+" "+tmpl)
	}
	return Expanded{
		Original:   query,
		Variations: variations,
		Method:     StrategyMultiQuery,
		Confidence: 1.0,
	}
}
