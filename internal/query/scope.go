package query

import (
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// ScopeMode identifies which brand set an analyzer is restricted to.
type ScopeMode string

const (
	ScopeAllBrands     ScopeMode = "all_brands"
	ScopeOwnBrands     ScopeMode = "own_brands"
	ScopeExplicitBrand ScopeMode = "explicit_brand"
	ScopeTargetBrand   ScopeMode = "target_brand"
)

// Scope carries the concrete brand key list every analyzer restricts itself
// to. Brands is empty only when Mode is ScopeAllBrands.
type Scope struct {
	Mode   ScopeMode `json:"mode"`
	Brands []string  `json:"brands,omitempty"`
}

// ResolveScope combines resolved entities with caller context. Priority is
// fixed: brands named in the text beat the caller's pinned target brand,
// which beats the caller's own-brand set, which beats the whole market. A
// question that names a competitor is about that competitor even when the
// caller carries own-brand context.
func ResolveScope(m *mart.Mart, e Entities, ownBrands []string) Scope {
	if len(e.Brands) > 0 {
		return Scope{Mode: ScopeExplicitBrand, Brands: e.Brands}
	}
	if e.TargetBrand != "" {
		return Scope{Mode: ScopeTargetBrand, Brands: []string{e.TargetBrand}}
	}
	if own := presentOwnBrands(m, ownBrands); len(own) > 0 {
		return Scope{Mode: ScopeOwnBrands, Brands: own}
	}
	return Scope{Mode: ScopeAllBrands}
}

// Includes reports whether a brand key falls inside the scope.
func (s Scope) Includes(brand string) bool {
	if s.Mode == ScopeAllBrands {
		return true
	}
	for _, b := range s.Brands {
		if b == brand {
			return true
		}
	}
	return false
}

func presentOwnBrands(m *mart.Mart, ownBrands []string) []string {
	var out []string
	for _, b := range ownBrands {
		key := snapshot.NormalizeKey(b)
		if _, ok := m.Brand(key); ok {
			out = append(out, key)
		}
	}
	return out
}
