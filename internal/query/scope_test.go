package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeExplicitBeatsTarget(t *testing.T) {
	m := testMart(t)

	// A question naming a competitor is about the competitor even when
	// the caller carries an own-brand pin.
	e := Entities{Brands: []string{"topdon"}, TargetBrand: "innova"}
	s := ResolveScope(m, e, []string{"innova"})
	assert.Equal(t, ScopeExplicitBrand, s.Mode)
	assert.Equal(t, []string{"topdon"}, s.Brands)
	assert.True(t, s.Includes("topdon"))
	assert.False(t, s.Includes("innova"))
}

func TestScopeTargetBeatsOwnBrands(t *testing.T) {
	m := testMart(t)

	e := Entities{TargetBrand: "ancel"}
	s := ResolveScope(m, e, []string{"innova"})
	assert.Equal(t, ScopeTargetBrand, s.Mode)
	assert.Equal(t, []string{"ancel"}, s.Brands)
}

func TestScopeOwnBrandsFilteredToMart(t *testing.T) {
	m := testMart(t)

	s := ResolveScope(m, Entities{}, []string{"innova", "ghostbrand"})
	assert.Equal(t, ScopeOwnBrands, s.Mode)
	assert.Equal(t, []string{"innova"}, s.Brands)
}

func TestScopeFallsBackToMarket(t *testing.T) {
	m := testMart(t)

	s := ResolveScope(m, Entities{}, []string{"ghostbrand"})
	assert.Equal(t, ScopeAllBrands, s.Mode)
	assert.Empty(t, s.Brands)
	assert.True(t, s.Includes("anything"))
}
