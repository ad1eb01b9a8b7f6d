package mart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/config"
)

func TestAliasTableFromBuild(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	// Brand key and display-name token both resolve.
	key, found := m.Aliases.BrandForAlias("innova")
	require.True(t, found)
	assert.Equal(t, "innova", key)

	key, found = m.Aliases.BrandForAlias("electronics")
	require.True(t, found)
	assert.Equal(t, "innova", key)

	// Digit-bearing title token resolves as a product alias.
	asin, found := m.Aliases.ProductForAlias("5610")
	require.True(t, found)
	assert.Equal(t, "b01innova1", asin)

	asin, found = m.Aliases.ProductForAlias("innova electronics 5610")
	require.True(t, found)
	assert.Equal(t, "b01innova1", asin)
}

func TestAliasShortTokensExcluded(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	// "the" style short tokens never become aliases.
	_, found := m.Aliases.BrandForAlias("ad")
	assert.False(t, found)
}

func TestPinnedAliasProtected(t *testing.T) {
	brands := []*BrandStats{
		{Key: "innova", Name: "Innova Electronics"},
		// A colliding brand whose display name contains the pinned token.
		{Key: "genuine innova parts", Name: "Genuine Innova Parts"},
	}
	table := buildAliasTable(brands, nil, config.AliasConfig{
		Pins: []config.PinnedAlias{{Alias: "innova", Brand: "innova"}},
	})

	key, found := table.BrandForAlias("innova")
	require.True(t, found)
	assert.Equal(t, "innova", key, "pinned alias must survive textual collisions")
}

func TestFirstWriterWinsWithoutPin(t *testing.T) {
	brands := []*BrandStats{
		{Key: "alpha", Name: "Shared Widget Alpha"},
		{Key: "beta", Name: "Shared Widget Beta"},
	}
	table := buildAliasTable(brands, nil, config.AliasConfig{})

	key, found := table.BrandForAlias("widget")
	require.True(t, found)
	assert.Equal(t, "alpha", key)

	key, found = table.BrandForAlias("shared")
	require.True(t, found)
	assert.Equal(t, "alpha", key)
}

func TestAliasOrderingLongestFirst(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	aliases := m.Aliases.BrandAliases()
	require.NotEmpty(t, aliases)
	for i := 1; i < len(aliases); i++ {
		assert.GreaterOrEqual(t, len(aliases[i-1]), len(aliases[i]),
			"aliases must be ordered longest first")
	}
}
