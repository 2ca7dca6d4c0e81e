package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
)

func testParser() *Parser {
	return New(config.DefaultBrands)
}

func TestParseNilAndUntitled(t *testing.T) {
	p := testParser()
	assert.Nil(t, p.Parse(nil))
	assert.Nil(t, p.Parse(&models.RawExtraction{Title: "   "}))
}

func TestParseFullScenario(t *testing.T) {
	p := testParser()
	raw := &models.RawExtraction{
		Platform: models.PlatformFlipkart,
		URL:      "https://www.flipkart.com/shoes/p/itm123",
		Title:    "Nike Men's Running Shoes (Black) Size 9 UK ₹2499 Best Offer Free Shipping",
		Price:    "₹2,499",
	}

	got := p.Parse(raw)
	require.NotNil(t, got)

	assert.Equal(t, "Nike Men's Running Shoes", got.CleanTitle)
	assert.NotContains(t, got.CleanTitle, "Best")
	assert.NotContains(t, got.CleanTitle, "Offer")
	assert.NotContains(t, got.CleanTitle, "Shipping")
	assert.Contains(t, got.Sizes, "9")
	assert.Equal(t, "Black", got.Color)
	assert.Equal(t, "Nike", got.Brand)
	assert.Equal(t, models.CategoryFootwear, got.Category)
	assert.Equal(t, 2499.0, got.PriceNumeric)
	assert.Equal(t, "@2499 rs", got.FormattedPrice)
	assert.True(t, got.HasPrice)

	// title 40+5, price 30, brand 15 = 90
	assert.Equal(t, 90, got.QualityScore)
	assert.Equal(t, models.TemplateSize, got.TemplateUsed)
	assert.Contains(t, got.FormattedMessage, "Nike Men's Running Shoes")
	assert.Contains(t, got.FormattedMessage, "@2499 rs")
	assert.Contains(t, got.FormattedMessage, raw.URL)
	assert.Contains(t, got.FormattedMessage, "\nSize - ")
}

func TestCleanTitleRemovesNoiseAndDuplicates(t *testing.T) {
	p := testParser()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "marketing words removed",
			in:   "Best Deal Premium Cotton Kurta Latest Sale",
			want: "Cotton Kurta",
		},
		{
			name: "parentheticals and brackets removed",
			in:   "Steel Water Bottle (1 Litre) [Rust Proof]",
			want: "Steel Water Bottle",
		},
		{
			name: "price mention and discount removed",
			in:   "Cotton Bedsheet ₹499 70% off",
			want: "Cotton Bedsheet",
		},
		{
			name: "duplicate words collapsed",
			in:   "Saree Silk Saree Traditional",
			want: "Saree Silk Traditional",
		},
		{
			name: "brand casing preserved",
			in:   "BOAT airdopes earbuds",
			want: "boAt Airdopes Earbuds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.cleanTitle(tt.in))
		})
	}
}

func TestExtractSizes(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"letter sizes", "Tshirt XL XXL Cotton", []string{"XL", "XXL"}},
		{"measurement", "Laptop Sleeve 15.6 inch Grey", []string{"15.6"}},
		{"free size", "Saree Blouse Free Size", []string{"FREE SIZE"}},
		{"capped at three", "Shirt S M L XL", []string{"S", "M", "L"}},
		{"none", "Ceramic Coffee Mug", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSizes(tt.title))
		})
	}
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		title    string
		quantity string
		pack     int
	}{
		{"Socks Pack of 3 Cotton", "3pcs", 3},
		{"5 pcs Kitchen Organizer", "5pcs", 5},
		{"Shampoo 2 in 1 Conditioner", "2pcs", 2},
		{"Pack of 1 Bottle", "", 0},
		{"Plain Tshirt", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			q, n := extractQuantity(tt.title)
			assert.Equal(t, tt.quantity, q)
			assert.Equal(t, tt.pack, n)
		})
	}
}

func TestExtractColor(t *testing.T) {
	assert.Equal(t, "Navy", extractColor("Navy Blue Formal Shirt"))
	assert.Equal(t, "", extractColor("Formal Cotton Shirt"))
	// Word boundary: "blackboard" must not match "black".
	assert.Equal(t, "", extractColor("Classroom Blackboard Duster"))
}

func TestDetectBrand(t *testing.T) {
	p := testParser()

	// Explicit field wins and is canonicalized.
	assert.Equal(t, "boAt", p.detectBrand("BOAT", "Wireless Earbuds"))
	// Unknown explicit brand falls through to title scan.
	assert.Equal(t, "Nike", p.detectBrand("SomeSeller Retail", "Nike Air Jordan"))
	// Dictionary order decides when several brands appear.
	assert.Equal(t, "Nike", p.detectBrand("", "Nike x Puma collab sneaker"))
	assert.Equal(t, "", p.detectBrand("", "Generic sneaker"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw       string
		numeric   float64
		formatted string
	}{
		{"₹2,499", 2499, "@2499 rs"},
		{"Rs. 1,099.50", 1099.5, "@1099 rs"},
		{"INR 349", 349, "@349 rs"},
		{"499 Rs", 499, "@499 rs"},
		{"MRP 999 only", 999, "@999 rs"},
		{"Price unavailable", 0, ""},
		{"", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			numeric, formatted := parsePrice(tt.raw)
			assert.Equal(t, tt.numeric, numeric)
			assert.Equal(t, tt.formatted, formatted)
		})
	}
}

func TestQualityScoreMonotonic(t *testing.T) {
	base := &models.ParsedProduct{CleanTitle: "Cotton Kurta Set Blue"}
	score := scoreQuality(base)

	withPrice := *base
	withPrice.HasPrice = true
	assert.Greater(t, scoreQuality(&withPrice), score)

	withBrand := withPrice
	withBrand.Brand = "Libas"
	assert.Greater(t, scoreQuality(&withBrand), scoreQuality(&withPrice))

	withImages := withBrand
	withImages.Images = []string{"https://x/i.jpg"}
	assert.Greater(t, scoreQuality(&withImages), scoreQuality(&withBrand))
	assert.Equal(t, 100, scoreQuality(&withImages))
}

func TestTemplateSelection(t *testing.T) {
	tests := []struct {
		name string
		prod models.ParsedProduct
		want models.TemplateName
	}{
		{
			name: "high quality with sizes",
			prod: models.ParsedProduct{QualityScore: 85, Sizes: []string{"M"}, HasPrice: true, CleanTitle: "Shirt Cotton"},
			want: models.TemplateSize,
		},
		{
			name: "high quality with color",
			prod: models.ParsedProduct{QualityScore: 85, Color: "Black", HasPrice: true, CleanTitle: "Shirt Cotton"},
			want: models.TemplateColor,
		},
		{
			name: "high quality pack",
			prod: models.ParsedProduct{QualityScore: 80, PackSize: 3, CleanTitle: "Socks Cotton"},
			want: models.TemplatePack,
		},
		{
			name: "mid quality with price",
			prod: models.ParsedProduct{QualityScore: 70, HasPrice: true, CleanTitle: "Shirt Cotton"},
			want: models.TemplateStandard,
		},
		{
			name: "brand only no price",
			prod: models.ParsedProduct{QualityScore: 55, Brand: "Nike", CleanTitle: "Shirt Cotton"},
			want: models.TemplateNoPrice,
		},
		{
			name: "nothing usable",
			prod: models.ParsedProduct{QualityScore: 0},
			want: models.TemplateFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectTemplate(&tt.prod))
		})
	}
}

func TestRenderNeverEmpty(t *testing.T) {
	p := testParser()

	// Minimal title, nothing else; message must still be usable.
	got := p.Parse(&models.RawExtraction{
		Platform: models.PlatformMeesho,
		URL:      "https://www.meesho.com/product/x-1",
		Title:    "!!",
	})
	require.NotNil(t, got)
	assert.Equal(t, models.TemplateFallback, got.TemplateUsed)
	assert.Equal(t, "Product from meesho https://www.meesho.com/product/x-1", got.FormattedMessage)
}

func TestRenderOmitsZeroPrice(t *testing.T) {
	p := testParser()
	got := p.Parse(&models.RawExtraction{
		Platform: models.PlatformAmazon,
		URL:      "https://www.amazon.in/dp/B0X",
		Title:    "Wooden Photo Frame Collage Set",
		Price:    "Price unavailable",
	})
	require.NotNil(t, got)
	assert.NotContains(t, got.FormattedMessage, "@0 rs")
	assert.False(t, got.HasPrice)
}

func TestDisplayTitleCappedAtTenWords(t *testing.T) {
	p := testParser()
	got := p.Parse(&models.RawExtraction{
		Platform: models.PlatformAmazon,
		URL:      "https://www.amazon.in/dp/B0X",
		Title:    "One Two Three Four Five Six Seven Eight Nine Ten Eleven Twelve",
	})
	require.NotNil(t, got)
	assert.LessOrEqual(t, len(strings.Fields(got.DisplayTitle)), 10)
}
