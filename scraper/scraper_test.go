package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/models"
)

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:          2 * time.Second,
		MaxRetries:       3,
		RetryBaseDelay:   time.Second,
		RateLimitedDelay: 5 * time.Second,
		HostRPS:          1000,
		HostBurst:        1000,
	}
}

// testScraper builds a scraper with real sleeps disabled and a plain HTTP
// transport so httptest servers work.
func testScraper(t *testing.T) (*Scraper, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	s := New(testFetchConfig())
	s.fetcher.client = &http.Client{Timeout: 2 * time.Second}
	s.fetcher.sleep = func(d time.Duration) { slept = append(slept, d) }
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, &slept
}

const amazonPage = `<html><body>
<span id="productTitle">  Nike Men's Revolution 6 Running Shoes (Black)  </span>
<span class="a-price"><span class="a-offscreen">₹2,499</span></span>
<a id="bylineInfo">Nike</a>
<div id="imgTagWrapperId"><img id="landingImage" data-old-hires="https://m.media-amazon.com/images/I/71abc.jpg" src="https://m.media-amazon.com/images/I/71abc-small.jpg"/></div>
<div id="availability"><span>In stock</span></div>
<div id="wayfinding-breadcrumbs_feature_div">Shoes › Men › Running Shoes</div>
</body></html>`

func TestScrapeAmazonSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(amazonPage))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, false)
	require.NoError(t, err)

	assert.Equal(t, "Nike Men's Revolution 6 Running Shoes (Black)", raw.Title)
	assert.Equal(t, "₹2,499", raw.Price)
	assert.Equal(t, "Nike", raw.Brand)
	assert.Equal(t, []string{"https://m.media-amazon.com/images/I/71abc.jpg"}, raw.Images)
	assert.False(t, raw.OutOfStock)
	assert.Equal(t, "Shoes › Men › Running Shoes", raw.CategoryHint)
	assert.Equal(t, models.MethodSelectors, raw.Method)
	assert.Equal(t, s.now(), raw.ScrapedAt)
}

func TestScrapeJSONLDFallback(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
{"@type":"Product","name":"Boat Airdopes 141 Bluetooth Earbuds","brand":{"name":"boAt"},
 "offers":{"price":1299},"image":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"]}
</script></head><body><p>javascript required</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformFlipkart, false)
	require.NoError(t, err)

	assert.Equal(t, "Boat Airdopes 141 Bluetooth Earbuds", raw.Title)
	assert.Equal(t, "1299", raw.Price)
	assert.Equal(t, "boAt", raw.Brand)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, raw.Images)
	assert.Equal(t, models.MethodJSONLD, raw.Method)
}

func TestScrapeMicrodataFallback(t *testing.T) {
	page := `<html><body>
<div itemtype="http://schema.org/Product">
  <h2 itemprop="name">Lakme Absolute Matte Lipstick Red Envy</h2>
  <span itemprop="brand">Lakme</span>
  <meta itemprop="price" content="499">
</div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformNone, false)
	require.NoError(t, err)

	assert.Equal(t, "Lakme Absolute Matte Lipstick Red Envy", raw.Title)
	assert.Equal(t, "499", raw.Price)
	assert.Equal(t, "Lakme", raw.Brand)
	assert.Equal(t, models.MethodMicrodata, raw.Method)
}

func TestScrapeNoTitleFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	_, err := s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, false)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeExtractionFailed, models.AsDealError(err).Code)
}

func TestScrapeMissingPriceIsNotFatal(t *testing.T) {
	page := `<html><body><span id="productTitle">Generic Cotton Bedsheet Double Size</span></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, false)
	require.NoError(t, err)
	assert.Empty(t, raw.Price)
}

func TestScrapeOutOfStock(t *testing.T) {
	page := `<html><body>
<span id="productTitle">Adidas Running Tshirt Mens Large</span>
<div id="availability"><span>Currently unavailable.</span></div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, false)
	require.NoError(t, err)
	assert.True(t, raw.OutOfStock)
}

func TestScrapeFullStockScan(t *testing.T) {
	// The notice sits outside the availability ladder; only the body-wide
	// scan finds it.
	page := `<html><body>
<span id="productTitle">Puma Sports Cap Unisex Adjustable</span>
<div class="random-banner">This item is sold out</div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s, _ := testScraper(t)

	raw, err := s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, false)
	require.NoError(t, err)
	assert.False(t, raw.OutOfStock)

	raw, err = s.Scrape(context.Background(), srv.URL, models.PlatformAmazon, true)
	require.NoError(t, err)
	assert.True(t, raw.OutOfStock)
}

func TestFetchRetriesWithBackoffAndUARotation(t *testing.T) {
	var agents []string
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s, slept := testScraper(t)
	body, err := s.fetcher.fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
	assert.Equal(t, userAgents[0], agents[0])
	assert.Equal(t, userAgents[1], agents[1])
	assert.Equal(t, userAgents[2], agents[2])
}

func TestFetch429WaitsFixedDelay(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s, slept := testScraper(t)
	_, err := s.fetcher.fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	// 5s for the 429 plus the 1s linear backoff before attempt two.
	assert.Contains(t, *slept, 5*time.Second)
}

func TestFetchExhaustedReturnsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := testScraper(t)
	_, err := s.fetcher.fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNetwork, models.AsDealError(err).Code)
}
