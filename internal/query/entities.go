package query

import (
	"regexp"
	"strings"

	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// Entities holds everything the question text resolved to. Resolution never
// exceeds what the text supports: no implicit most-likely-brand guessing.
type Entities struct {
	Brands []string `json:"brands"` // normalized brand keys, first-mention order
	ASINs  []string `json:"asins"`  // normalized ASINs, first-mention order

	// TargetBrand is the caller-pinned brand, resolved through the alias
	// table. Empty when the caller pinned nothing or the pin is unknown.
	TargetBrand string `json:"target_brand,omitempty"`
}

var asinTokenRe = regexp.MustCompile(`\bb0[a-z0-9]{8}\b`)

// searchText lowercases the question and flattens punctuation to spaces so
// aliases match next to question marks and commas.
func searchText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Resolver finds brand and product mentions using a mart's alias tables. The
// matching heuristics live entirely behind this type so they can be tested
// and swapped without touching routing.
type Resolver struct{}

// NewResolver creates an entity resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve scans the question for brand aliases (longest first, consuming the
// matched span so fragments cannot re-match), ASIN-shaped tokens, and fuzzy
// product aliases. targetBrand is the caller-supplied pin, if any.
func (r *Resolver) Resolve(m *mart.Mart, message, targetBrand string) Entities {
	text := " " + searchText(message) + " "
	var e Entities

	seenBrand := make(map[string]bool)
	for _, alias := range m.Aliases.BrandAliases() {
		needle := " " + alias + " "
		if !strings.Contains(text, needle) {
			continue
		}
		key, _ := m.Aliases.BrandForAlias(alias)
		if !seenBrand[key] {
			seenBrand[key] = true
			e.Brands = append(e.Brands, key)
		}
		text = strings.ReplaceAll(text, needle, " ")
	}

	seenASIN := make(map[string]bool)
	for _, tok := range asinTokenRe.FindAllString(text, -1) {
		asin := snapshot.NormalizeASIN(tok)
		if _, ok := m.Product(asin); ok && !seenASIN[asin] {
			seenASIN[asin] = true
			e.ASINs = append(e.ASINs, asin)
		}
	}

	for _, alias := range m.Aliases.ProductAliases() {
		needle := " " + alias + " "
		if !strings.Contains(text, needle) {
			continue
		}
		asin, _ := m.Aliases.ProductForAlias(alias)
		if !seenASIN[asin] {
			seenASIN[asin] = true
			e.ASINs = append(e.ASINs, asin)
		}
		text = strings.ReplaceAll(text, needle, " ")
	}

	if targetBrand != "" {
		if key, ok := m.Aliases.BrandForAlias(targetBrand); ok {
			e.TargetBrand = key
		}
	}
	return e
}
