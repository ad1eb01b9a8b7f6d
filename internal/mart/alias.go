package mart

import (
	"sort"
	"strings"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// aliasStopwords are display-name tokens too generic to identify a brand.
var aliasStopwords = map[string]bool{
	"the": true, "and": true, "with": true, "for": true, "from": true,
	"brand": true, "official": true, "store": true, "tools": true,
	"pack": true, "count": true, "piece": true, "inch": true,
}

// AliasTable maps normalized textual aliases to canonical brand keys and
// product identity keys. Many-to-one; built once per mart and immutable.
type AliasTable struct {
	brandByAlias   map[string]string // alias -> brand key
	brandAliases   []string          // longest-first scan order
	productByAlias map[string]string // alias -> normalized ASIN
	productAliases []string          // longest-first scan order
	pinned         map[string]bool   // aliases protected from overwrite
}

// BrandForAlias resolves one alias to its brand key.
func (t *AliasTable) BrandForAlias(alias string) (string, bool) {
	key, ok := t.brandByAlias[snapshot.NormalizeKey(alias)]
	return key, ok
}

// ProductForAlias resolves one alias to its normalized ASIN.
func (t *AliasTable) ProductForAlias(alias string) (string, bool) {
	asin, ok := t.productByAlias[snapshot.NormalizeKey(alias)]
	return asin, ok
}

// BrandAliases returns every brand alias, longest first. Longest-first order
// lets the entity resolver consume multi-token aliases before their
// single-token fragments.
func (t *AliasTable) BrandAliases() []string {
	return t.brandAliases
}

// ProductAliases returns every product alias, longest first.
func (t *AliasTable) ProductAliases() []string {
	return t.productAliases
}

// buildAliasTable derives the alias table for one mart build. Derived aliases
// are first-writer-wins in deterministic order; pins from cfg are applied
// last and always win, and a pinned entry can never be overwritten.
func buildAliasTable(brands []*BrandStats, products []*IndexedProduct, cfg config.AliasConfig) *AliasTable {
	t := &AliasTable{
		brandByAlias:   make(map[string]string),
		productByAlias: make(map[string]string),
		pinned:         make(map[string]bool),
	}

	// Pins first so no derived alias can shadow them.
	for _, pin := range cfg.Pins {
		alias := snapshot.NormalizeKey(pin.Alias)
		if alias == "" || t.pinned[alias] {
			continue
		}
		t.brandByAlias[alias] = snapshot.NormalizeKey(pin.Brand)
		t.pinned[alias] = true
	}

	for _, b := range brands {
		t.addBrandAlias(b.Key, b.Key)
		for _, tok := range nameTokens(b.Name) {
			t.addBrandAlias(tok, b.Key)
		}
	}

	for _, p := range products {
		if p.Brand != "" {
			t.addBrandAlias(p.Brand, p.Brand)
			for _, tok := range nameTokens(p.BrandName) {
				t.addBrandAlias(tok, p.Brand)
			}
		}
		for _, alias := range productNameAliases(p) {
			if _, exists := t.productByAlias[alias]; !exists {
				t.productByAlias[alias] = p.ASIN
			}
		}
	}

	t.brandAliases = orderedAliases(t.brandByAlias)
	t.productAliases = orderedAliases(t.productByAlias)
	return t
}

func (t *AliasTable) addBrandAlias(alias, brand string) {
	alias = snapshot.NormalizeKey(alias)
	if alias == "" || brand == "" {
		return
	}
	if t.pinned[alias] {
		return
	}
	if _, exists := t.brandByAlias[alias]; exists {
		return
	}
	t.brandByAlias[alias] = snapshot.NormalizeKey(brand)
}

// nameTokens extracts alias-worthy tokens from a display name: length >= 4,
// not a stopword.
func nameTokens(name string) []string {
	var out []string
	for _, tok := range strings.Fields(snapshot.NormalizeKey(name)) {
		if len(tok) < 4 || aliasStopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// productNameAliases builds fuzzy product aliases from brand + digit-bearing
// title tokens, so "Innova 5610" resolves even though 5610 is not an ASIN.
func productNameAliases(p *IndexedProduct) []string {
	brand := snapshot.NormalizeKey(p.BrandName)
	if brand == "" {
		brand = p.Brand
	}
	var out []string
	for _, tok := range strings.Fields(snapshot.NormalizeKey(p.Title)) {
		if len(tok) < 3 || !hasDigit(tok) || tok == p.ASIN {
			continue
		}
		if brand != "" {
			out = append(out, brand+" "+tok)
		}
		out = append(out, tok)
	}
	return out
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// orderedAliases sorts aliases longest first, then lexicographically so scan
// order is deterministic.
func orderedAliases(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for alias := range m {
		out = append(out, alias)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
