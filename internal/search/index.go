// Package search ranks registry routes against a free-text query so an
// operator can find "the one that lists reviews for a product" without
// knowing its (domain, operation) key.
//
// Each route becomes a token set built from its domain, operation, service,
// method and the literal segments of its path. Scoring is Jaccard similarity
// between the query token set Q and a route token set R:
// score = |Q ∩ R| / |Q ∪ R|. The index is immutable after construction and
// safe for concurrent use.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// DefaultLimit is used when TopK is called with k <= 0.
const DefaultLimit = 5

// Result is a ranked route with its similarity score.
type Result struct {
	Route routes.Route
	Score float64
}

// Option customizes an Index.
type Option func(*Index)

// WithStopwords adds words ignored in both queries and routes.
func WithStopwords(words []string) Option {
	return func(i *Index) {
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				i.stop[stem(w)] = struct{}{}
			}
		}
	}
}

type doc struct {
	route  routes.Route
	key    string
	tokens map[string]struct{}
}

// Index is a read-only route index.
type Index struct {
	stop map[string]struct{}
	docs []doc
}

var defaultStopwords = []string{"a", "an", "the", "of", "for", "by", "to", "api"}

// NewRouteIndex indexes every route of reg. A nil registry yields an empty
// index.
func NewRouteIndex(reg *routes.Registry, opts ...Option) *Index {
	i := &Index{stop: map[string]struct{}{}}
	WithStopwords(defaultStopwords)(i)
	for _, o := range opts {
		o(i)
	}
	if reg == nil {
		return i
	}
	for _, r := range reg.All() {
		toks := i.tokenize(strings.Join(routeTerms(r), " "))
		if len(toks) == 0 {
			continue
		}
		i.docs = append(i.docs, doc{route: r, key: r.Key().String(), tokens: toks})
	}
	return i
}

// Len returns the number of indexed routes.
func (i *Index) Len() int { return len(i.docs) }

// TopK returns up to k routes matching q, best first. Ties break on the
// route key so results are deterministic.
func (i *Index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = DefaultLimit
	}
	qt := i.tokenize(q)
	if len(qt) == 0 {
		return nil
	}

	type scored struct {
		d     doc
		score float64
	}
	var buf []scored
	for _, d := range i.docs {
		over := overlap(qt, d.tokens)
		if over == 0 {
			continue
		}
		union := len(qt) + len(d.tokens) - over
		buf = append(buf, scored{d: d, score: float64(over) / float64(union)})
	}
	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].d.key < buf[b].d.key
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{Route: buf[n].d.route, Score: buf[n].score}
	}
	return out
}

// routeTerms lists the words a route is known by. Path placeholders are
// skipped; they name parameters, not resources.
func routeTerms(r routes.Route) []string {
	terms := []string{r.Domain, r.Operation, r.Service, r.Method}
	for _, seg := range strings.Split(r.Path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		terms = append(terms, seg)
	}
	return terms
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func (i *Index) tokenize(s string) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = stem(w)
		if _, skip := i.stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// stem folds a plain English plural onto its singular ("reviews" -> "review").
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
