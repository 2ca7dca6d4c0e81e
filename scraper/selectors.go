package scraper

import (
	"github.com/andybalholm/cascadia"

	"github.com/use-deal/dealbot/models"
)

// fieldSelectors holds the ordered selector ladder for each product field.
// Earlier entries are more specific and tried first; the ladder degrades
// toward generic fallbacks.
type fieldSelectors struct {
	title        []cascadia.Selector
	price        []cascadia.Selector
	brand        []cascadia.Selector
	images       []cascadia.Selector
	availability []cascadia.Selector
}

// platformSelectors maps each marketplace to its selector ladders. Compiled
// once at init; storefront markup churns, so ladders carry both current and
// previous-generation class names.
var platformSelectors = map[models.Platform]fieldSelectors{
	models.PlatformAmazon: {
		title: compileAll(
			"#productTitle",
			"span#productTitle",
			"h1.a-size-large.a-spacing-none.a-color-base",
			`h1 span[data-automation-id="product-title"]`,
			".product-title h1",
			`[data-testid="product-title"]`,
			"h1.a-size-large",
		),
		price: compileAll(
			".a-price.a-text-price.a-size-medium.a-color-base .a-offscreen",
			".a-price-whole",
			".a-price .a-offscreen",
			"span.a-price-symbol + span.a-price-whole",
			".a-price-range .a-offscreen",
			"#apex_desktop .a-price .a-offscreen",
			".a-price.a-text-price .a-offscreen",
			`[data-testid="price"] .a-offscreen`,
			".a-price.a-text-normal .a-offscreen",
		),
		brand: compileAll(
			"#bylineInfo",
			"a#bylineInfo",
			`.a-link-normal[data-attribute="brand"]`,
			".po-brand .po-break-word",
			"tr.a-spacing-small td.a-span9 span",
			`[data-testid="brand-name"]`,
		),
		images: compileAll(
			"#landingImage",
			".a-dynamic-image",
			"#imgTagWrapperId img",
			"img[data-old-hires]",
			`.a-spacing-small img[src*="amazon"]`,
		),
		availability: compileAll(
			"#availability span",
			".a-color-state",
			".a-color-price",
			"#outOfStock",
			".a-alert-content",
			`[data-testid="availability"]`,
		),
	},
	models.PlatformFlipkart: {
		title: compileAll(
			"span.VU-ZEz",
			"span.B_NuCI",
			"h1 span.VU-ZEz",
			"h1._35KyD6",
			".B_NuCI",
			"span._35KyD6",
			"h1 span",
			`[data-testid="product-title"]`,
		),
		price: compileAll(
			"div.Nx9bqj.CxhGGd",
			"._30jeq3._16Jk6d",
			"._1_WHN1",
			"._3I9_wc._2p6lqe",
			"div._25b18c div",
			"._30jeq3",
			"div._16Jk6d",
			`[data-testid="selling-price"]`,
		),
		brand: compileAll(
			".G6XhBx",
			".aMaAEs",
			"span.G6XhBx",
			`[data-testid="brand-name"]`,
		),
		images: compileAll(
			"._396cs4 img",
			"._2r_T1I img",
			".CXW8mj img",
			"._2KpZ6l._396cs4 img",
			"img._396cs4",
			`[data-testid="product-image"] img`,
		),
	},
	models.PlatformMeesho: {
		title: compileAll(
			`h1[data-testid="product-title"]`,
			"h1.sc-eDvSVe",
			".ProductDetail__productName",
			"h1",
			".sc-bcXHqe",
			`[data-testid="pdp-product-name"]`,
		),
		price: compileAll(
			`h4[data-testid="product-price"]`,
			".ProductDetail__price",
			"h4.sc-htpNat",
			".price",
			"h4",
			`[data-testid="selling-price"]`,
		),
		brand: compileAll(
			`[data-testid="brand-name"]`,
			".brand-name",
			".ProductDetail__brand",
		),
		images: compileAll(
			`[data-testid="product-image"] img`,
			".ProductDetail__image img",
			".product-image img",
		),
	},
	models.PlatformMyntra: {
		title: compileAll(
			"h1.pdp-name",
			".pdp-product-name",
			`h1[data-testid="product-name"]`,
			".product-name",
			".pdp-name",
		),
		price: compileAll(
			".pdp-price strong",
			".product-discountedPrice",
			".pdp-price",
			`[data-testid="price"] strong`,
			".price-current",
		),
		brand: compileAll(
			".pdp-title",
			`[data-testid="brand-name"]`,
			".brand-name",
		),
		images: compileAll(
			".image-grid-image",
			".product-image img",
			`[data-testid="product-image"] img`,
		),
	},
	models.PlatformAjio: {
		title: compileAll(
			".prod-name",
			"h1.product-title",
			".product-name",
			`[data-testid="product-title"]`,
		),
		price: compileAll(
			".prod-sp",
			".product-price",
			".price-current",
			`[data-testid="selling-price"]`,
		),
		brand: compileAll(
			".prod-brand",
			`[data-testid="brand-name"]`,
			".brand-name",
		),
		images: compileAll(
			".prod-image img",
			".product-image img",
		),
	},
	models.PlatformSnapdeal: {
		title: compileAll(
			`h1[itemprop="name"]`,
			".pdp-product-name",
			".product-title",
			`[data-testid="product-title"]`,
		),
		price: compileAll(
			".payBlkBig",
			".product-price",
			".price-current",
			`[data-testid="selling-price"]`,
		),
		brand: compileAll(
			".brand-name",
			`[data-testid="brand-name"]`,
		),
		images: compileAll(
			".product-image img",
			".pdp-image img",
		),
	},
	models.PlatformWishlink: {
		title: compileAll(
			".product-title",
			"h1.title",
			".product-name",
		),
		price: compileAll(
			".product-price",
			".price-current",
			".price",
		),
	},
}

// breadcrumbSelectors locate the category trail, shared across platforms.
var breadcrumbSelectors = compileAll(
	`[data-testid="breadcrumb"]`,
	".breadcrumb",
	".nav-breadcrumb",
	"#wayfinding-breadcrumbs_feature_div",
)

func compileAll(selectors ...string) []cascadia.Selector {
	compiled := make([]cascadia.Selector, 0, len(selectors))
	for _, s := range selectors {
		compiled = append(compiled, cascadia.MustCompile(s))
	}
	return compiled
}

// selectorsFor returns the ladder set for a platform; unknown platforms get
// an empty set, which pushes extraction onto the structured-data fallbacks.
func selectorsFor(platform models.Platform) fieldSelectors {
	return platformSelectors[platform]
}
