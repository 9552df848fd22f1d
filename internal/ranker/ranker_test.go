package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefinder/internal/domain"
)

func TestExtractFeatures(t *testing.T) {
	f := ExtractFeatures("Apple iPhone 15 Pro 256GB Blue 120Hz")

	assert.Equal(t, []string{"apple"}, f.Brands)
	assert.Contains(t, f.BrandModels, "iphone")
	assert.Contains(t, f.ModelTokens, "15 pro")
	assert.Contains(t, f.Specs, "256gb")
	assert.Contains(t, f.Specs, "120hz")
	assert.Contains(t, f.Colors, "blue")
	assert.Contains(t, f.Keywords, "apple")
}

func TestScoreBrandAndModel(t *testing.T) {
	f := ExtractFeatures("apple iphone 15")

	withBrand := Score("Apple iPhone 15 128GB", f)
	withoutBrand := Score("Generic Phone Case", f)

	assert.Greater(t, withBrand, 0.5)
	assert.Less(t, withoutBrand, 0.2)
}

func TestScoreMonotonicInBrandMatch(t *testing.T) {
	f := ExtractFeatures("apple iphone 15 blue")

	base := Score("Smartphone 15 Blue 128GB", f)
	withBrand := Score("Apple Smartphone 15 Blue 128GB", f)

	assert.GreaterOrEqual(t, withBrand, base,
		"adding a matching brand term must not decrease the score")
}

func TestScoreClampedToOne(t *testing.T) {
	f := ExtractFeatures("apple iphone ipad macbook watch 15 pro 256gb blue")

	score := Score("Apple iPhone iPad MacBook Watch 15 Pro 256GB Blue", f)

	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.9)
}

func TestFilterAndSortDropsWeakMatches(t *testing.T) {
	records := []domain.Product{
		{Title: "Apple iPhone 15 128GB", Price: 799},
		{Title: "USB-C Charging Cable", Price: 9},
	}

	out := FilterAndSort(records, "apple iphone 15", DefaultThreshold)

	require.Len(t, out, 1)
	assert.Equal(t, "Apple iPhone 15 128GB", out[0].Title)
	assert.Greater(t, out[0].RelevanceScore, 0.0)
}

func TestFilterAndSortOrdersByScoreThenPrice(t *testing.T) {
	records := []domain.Product{
		{Title: "Apple iPhone 15 128GB", Price: 850},
		{Title: "Apple iPhone 15 128GB", Price: 799},
		{Title: "iPhone 15 Compatible Screen Protector", Price: 12},
	}

	out := FilterAndSort(records, "apple iphone 15", DefaultThreshold)

	require.GreaterOrEqual(t, len(out), 2)
	// Equal scores fall back to ascending price.
	assert.Equal(t, 799.0, out[0].Price)
	assert.Equal(t, 850.0, out[1].Price)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].RelevanceScore, out[i].RelevanceScore)
	}
}

func TestFilterAndSortMissingPriceSortsLast(t *testing.T) {
	records := []domain.Product{
		{Title: "Apple iPhone 15", Price: 0},
		{Title: "Apple iPhone 15", Price: 799},
	}

	out := FilterAndSort(records, "apple iphone 15", DefaultThreshold)

	require.Len(t, out, 2)
	assert.Equal(t, 799.0, out[0].Price)
	assert.Equal(t, 0.0, out[1].Price)
}

func TestPlainRecordsKeepZeroRelevance(t *testing.T) {
	// RelevanceScore is meaningful only after ranking; a record that
	// never passed through the ranker stays at zero.
	p := domain.Product{Title: "Apple iPhone 15", Price: 799}
	assert.Zero(t, p.RelevanceScore)
}
