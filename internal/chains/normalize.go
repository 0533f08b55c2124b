// Package chains canonicalizes the network names two venues use for the same
// settlement rail. Venues spell the same chain differently ("ERC20" vs
// "Ethereum"), so intersections must compare canonical identities.
package chains

import (
	"sort"
	"strings"
)

// Pair is a matched chain pair: the literal name each venue uses for one
// canonical chain.
type Pair struct {
	A string
	B string
}

// Normalizer maps venue-specific chain spellings onto a canonical vocabulary.
// The alias table is injected at construction so tests can substitute it.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer builds a normalizer over the given alias table. Keys must be
// pre-stripped upper-case tokens.
func NewNormalizer(aliases map[string]string) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// NewDefaultNormalizer builds a normalizer over the built-in alias table.
func NewDefaultNormalizer() *Normalizer {
	return NewNormalizer(defaultAliases)
}

// Normalize upper-cases the name, strips every non-alphanumeric character,
// and maps the token through the alias table. Unknown tokens pass through
// stripped.
func (n *Normalizer) Normalize(name string) string {
	token := stripToken(name)
	if token == "" {
		return ""
	}
	if canonical, ok := n.aliases[token]; ok {
		return canonical
	}
	return token
}

func stripToken(name string) string {
	upper := strings.ToUpper(name)
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalMap maps canonical token -> first literal name seen for it.
func (n *Normalizer) canonicalMap(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		key := n.Normalize(name)
		if key == "" {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = name
		}
	}
	return out
}

// CommonChains intersects two chain-name lists by canonical identity and
// returns the side-A literal names, ordered by canonical key.
func (n *Normalizer) CommonChains(a, b []string) []string {
	aMap := n.canonicalMap(a)
	bMap := n.canonicalMap(b)

	keys := make([]string, 0, len(aMap))
	for k := range aMap {
		if _, ok := bMap[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, aMap[k])
	}
	return out
}

// CommonChainPairs intersects two chain-name lists by canonical identity and
// returns (literal-A, literal-B) pairs, ordered by canonical key so selection
// stays reproducible across runs.
func (n *Normalizer) CommonChainPairs(a, b []string) []Pair {
	aMap := n.canonicalMap(a)
	bMap := n.canonicalMap(b)

	keys := make([]string, 0, len(aMap))
	for k := range aMap {
		if _, ok := bMap[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{A: aMap[k], B: bMap[k]})
	}
	return out
}
