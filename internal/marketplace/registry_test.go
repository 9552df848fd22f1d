package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesForIsDeterministic(t *testing.T) {
	first := SourcesFor("US")
	second := SourcesFor("us")

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "lookup is case-insensitive and stable")

	names := make([]string, 0, len(first))
	for _, s := range first {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Amazon", "eBay", "Target", "Walmart"}, names)
}

func TestSourcesForUnknownCountry(t *testing.T) {
	assert.Nil(t, SourcesFor("ZZ"))
	assert.False(t, IsSupported("ZZ"))
}

func TestSearchURLPerSite(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{
			Source{Name: "Amazon", Domain: "amazon.com"},
			"https://amazon.com/s?k=iphone+15&ref=sr_pg_1",
		},
		{
			Source{Name: "eBay", Domain: "ebay.com"},
			"https://ebay.com/sch/i.html?_nkw=iphone+15&_sacat=0&LH_BIN=1&_sop=15",
		},
		{
			Source{Name: "Walmart", Domain: "walmart.com"},
			"https://walmart.com/search?q=iphone+15",
		},
		{
			Source{Name: "Flipkart", Domain: "flipkart.com"},
			"https://flipkart.com/search?q=iphone+15&sort=price_asc",
		},
		{
			Source{Name: "Target", Domain: "target.com"},
			"https://target.com/s?searchTerm=iphone+15",
		},
		{
			Source{Name: "SomeShop", Domain: "someshop.example"},
			"https://someshop.example/search?q=iphone+15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.src.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.src.SearchURL("iphone 15"))
		})
	}
}

func TestCountriesSortedAndCurrencies(t *testing.T) {
	countries := Countries()
	require.Contains(t, countries, "US")
	require.Contains(t, countries, "IN")
	for i := 1; i < len(countries); i++ {
		assert.Less(t, countries[i-1], countries[i])
	}

	assert.Equal(t, "USD", CurrencyFor("US"))
	assert.Equal(t, "INR", CurrencyFor("in"))
	assert.Equal(t, "", CurrencyFor("ZZ"))
}

func TestLimitFor(t *testing.T) {
	amazon := LimitFor("Amazon")
	assert.Equal(t, 0.5, amazon.RequestsPerSecond)
	assert.Equal(t, 2, amazon.Burst)

	unknown := LimitFor("someshop")
	assert.Equal(t, 1.0, unknown.RequestsPerSecond)
	assert.Equal(t, 2, unknown.Burst)
}
