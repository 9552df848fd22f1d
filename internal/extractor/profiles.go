package extractor

// SiteProfile drives extraction for one marketplace. Each field carries
// an ordered selector chain tried until one yields non-empty text; the
// chains are data, so adding a marketplace means adding a profile.
type SiteProfile struct {
	Name string
	// HostPatterns are substrings matched against the page URL host.
	HostPatterns []string
	// ListingSelectors locate product links on a search-results page.
	ListingSelectors []string
	Title            []string
	Price            []string
	OriginalPrice    []string
	Availability     []string
	Rating           []string
	Reviews          []string
	Image            []string
}

var profiles = []SiteProfile{
	{
		Name:         "Amazon",
		HostPatterns: []string{"amazon."},
		ListingSelectors: []string{
			`[data-component-type="s-search-result"] h2 a`,
			`.s-result-item[data-asin] h2 a`,
			`a[href*="/dp/"]`,
		},
		Title: []string{
			`#productTitle`,
			`h2 a span`,
			`h2 .a-link-normal`,
			`[data-cy="title-recipe-link"]`,
		},
		Price: []string{
			`.a-price .a-offscreen`,
			`.a-price-whole`,
			`#priceblock_ourprice`,
			`#priceblock_dealprice`,
		},
		OriginalPrice: []string{
			`.a-price.a-text-price .a-offscreen`,
			`#priceblock_listprice`,
			`.basisPrice .a-offscreen`,
		},
		Availability: []string{
			`#availability span`,
			`#availability`,
		},
		Rating: []string{
			`#acrPopover .a-icon-alt`,
			`.a-icon-alt`,
		},
		Reviews: []string{
			`#acrCustomerReviewText`,
			`[data-hook="total-review-count"]`,
		},
		Image: []string{
			`#landingImage`,
			`img.s-image`,
		},
	},
	{
		Name:         "eBay",
		HostPatterns: []string{"ebay."},
		ListingSelectors: []string{
			`.s-item .s-item__link`,
			`a[href*="/itm/"]`,
		},
		Title: []string{
			`h1.x-item-title__mainTitle span`,
			`.x-item-title__mainTitle`,
			`.s-item__title`,
		},
		Price: []string{
			`.x-price-primary .ux-textspans`,
			`.x-price-primary`,
			`.s-item__price .notranslate`,
			`.s-item__price`,
		},
		OriginalPrice: []string{
			`.x-additional-info .ux-textspans--STRIKETHROUGH`,
			`.s-item__trending-price .STRIKETHROUGH`,
		},
		Availability: []string{
			`.d-quantity__availability .ux-textspans`,
			`.s-item__subtitle`,
		},
		Rating: []string{
			`.ux-summary__start--rating .ux-textspans`,
		},
		Reviews: []string{
			`.ux-summary__count .ux-textspans`,
			`.s-item__reviews-count`,
		},
		Image: []string{
			`.ux-image-carousel-item img`,
			`.s-item__image-img`,
		},
	},
	{
		Name:         "Walmart",
		HostPatterns: []string{"walmart."},
		ListingSelectors: []string{
			`[data-testid="item-stack"] a[href*="/ip/"]`,
			`[data-automation-id="product-tile"] a[href*="/ip/"]`,
			`a[href*="/ip/"]`,
		},
		Title: []string{
			`h1[itemprop="name"]`,
			`[data-automation-id="product-title"]`,
			`[data-testid="product-title"]`,
		},
		Price: []string{
			`[itemprop="price"]`,
			`[data-automation-id="product-price"] .w_iUH7`,
			`[data-testid="price-wrap"] span`,
		},
		OriginalPrice: []string{
			`[data-testid="strikethrough-price"]`,
			`.w_C8.w_D_.w_C7`,
		},
		Availability: []string{
			`[data-testid="fulfillment-badge"]`,
		},
		Rating: []string{
			`[itemprop="ratingValue"]`,
			`.rating-number`,
		},
		Reviews: []string{
			`[itemprop="ratingCount"]`,
			`[data-testid="reviews-count"]`,
		},
		Image: []string{
			`[data-testid="hero-image"] img`,
			`img.db`,
		},
	},
	{
		Name:         "Flipkart",
		HostPatterns: []string{"flipkart."},
		ListingSelectors: []string{
			`[data-id] a[href*="/p/"]`,
			`a[href*="/p/"]`,
		},
		Title: []string{
			`.B_NuCI`,
			`span.VU-ZEz`,
			`a[title]`,
			`.IRpwTa`,
		},
		Price: []string{
			`._30jeq3._16Jk6d`,
			`._30jeq3`,
			`.Nx9bqj`,
			`._1_WHN1`,
		},
		OriginalPrice: []string{
			`._3I9_wc._2p6lqe`,
			`._3I9_wc`,
			`.yRaY8j`,
		},
		Availability: []string{
			`._16FRp0`,
		},
		Rating: []string{
			`._3LWZlK`,
			`.XQDdHH`,
		},
		Reviews: []string{
			`._2_R_DZ`,
			`.Wphh3N`,
		},
		Image: []string{
			`._396cs4`,
			`.DByuf4`,
		},
	},
	{
		Name:         "Target",
		HostPatterns: []string{"target."},
		ListingSelectors: []string{
			`[data-test="product-details"] a[href*="/p/"]`,
			`a[href*="/p/"]`,
		},
		Title: []string{
			`h1[data-test="product-title"]`,
			`[data-test="product-title"]`,
		},
		Price: []string{
			`[data-test="product-price"]`,
		},
		OriginalPrice: []string{
			`[data-test="product-regular-price"]`,
		},
		Availability: []string{
			`[data-test="fulfillment"]`,
		},
		Rating: []string{
			`[data-test="rating-value"]`,
		},
		Reviews: []string{
			`[data-test="rating-count"]`,
		},
		Image: []string{
			`[data-test="image-gallery-item-0"] img`,
		},
	},
}

// genericProfile is the last-resort selector set used when no site
// profile matches the host or a matching profile's chains exhaust.
var genericProfile = SiteProfile{
	Name: "generic",
	ListingSelectors: []string{
		`a[href*="/product"]`,
		`a[href*="/item"]`,
		`a[href*="/dp/"]`,
		`a[href*="/p/"]`,
	},
	Title: []string{
		`h1`,
		`[class*="title" i]`,
		`[class*="name" i]`,
		`[itemprop="name"]`,
	},
	Price: []string{
		`[class*="price" i]`,
		`[class*="cost" i]`,
		`[class*="amount" i]`,
		`[itemprop="price"]`,
	},
	OriginalPrice: []string{
		`[class*="original" i]`,
		`[class*="strike" i]`,
		`del`,
	},
	Availability: []string{
		`[class*="availability" i]`,
		`[class*="stock" i]`,
	},
	Rating: []string{
		`[class*="rating" i]`,
		`[itemprop="ratingValue"]`,
	},
	Reviews: []string{
		`[class*="review" i]`,
	},
	Image: []string{
		`[class*="product" i] img`,
		`main img`,
	},
}

// profileFor matches the URL host against known profiles.
func profileFor(host string) (SiteProfile, bool) {
	for _, p := range profiles {
		for _, pat := range p.HostPatterns {
			if pat != "" && containsFold(host, pat) {
				return p, true
			}
		}
	}
	return SiteProfile{}, false
}
