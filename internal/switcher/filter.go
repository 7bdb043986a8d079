package switcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type scoredOption struct {
	option Option
	tier   int
	score  int
	index  int
}

// Filter ranks options against query: substring matches first, earliest
// match wins; then near misses by edit distance to any word. An empty query
// keeps every option in order.
func Filter(options []Option, query string) []Option {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Option(nil), options...)
	}
	scored := make([]scoredOption, 0, len(options))
	for i, o := range options {
		if s, ok := score(o, q); ok {
			s.index = i
			scored = append(scored, s)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		return a.score < b.score
	})
	out := make([]Option, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.option)
	}
	return out
}

func score(o Option, q string) (scoredOption, bool) {
	hay := strings.ToLower(o.Text + " " + o.AlternateText)
	if idx := strings.Index(hay, q); idx >= 0 {
		return scoredOption{option: o, tier: 0, score: idx}, true
	}
	limit := max(1, len([]rune(q))/3)
	best := -1
	for _, w := range strings.FieldsFunc(hay, func(r rune) bool { return r == ' ' || r == '@' || r == '.' }) {
		d := levenshtein.ComputeDistance(q, w)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 || best > limit {
		return scoredOption{}, false
	}
	return scoredOption{option: o, tier: 1, score: best}, true
}
