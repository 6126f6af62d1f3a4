package shopify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"catalog-reconciler/config"
	"catalog-reconciler/models"
	"catalog-reconciler/utils"
)

// BrowserScraper drives a headless browser over storefront collection pages
// for stores whose anti-bot layer rejects plain HTTP clients. It extracts
// product tiles after scrolling the page to trigger lazy loading.
type BrowserScraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.URLSet
	retry   *utils.RetryConfig

	mu      sync.Mutex
	records []models.Record
}

// NewBrowserScraper creates a ready-to-use BrowserScraper.
func NewBrowserScraper(cfg *config.Config, logger *utils.Logger) *BrowserScraper {
	return &BrowserScraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, time.Duration(cfg.RateLimitMs)*time.Millisecond),
		visited: utils.NewURLSet(),
		retry:   utils.NewRetry(cfg.MaxRetries, 2*time.Second, logger),
	}
}

// productTile is what the in-page extraction script returns per product.
type productTile struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Image string `json:"image"`
	Price string `json:"price"`
}

// ScrapeCollections loads each collection URL and extracts its product
// tiles. Collections are fetched through the rate-limited worker pool.
func (b *BrowserScraper) ScrapeCollections(urls []string) ([]models.Record, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	chromeBin := findChromeBinary(b.cfg.ChromeBin)
	b.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	for _, collectionURL := range urls {
		url := collectionURL
		b.pool.Submit(func() {
			if err := b.scrapeCollection(silentCtx, url); err != nil {
				b.logger.Error("[browser] %s failed: %v", url, err)
			}
		})
	}
	b.pool.Wait()

	b.logger.Info("[browser] collected %d raw records from %d collections",
		len(b.records), len(urls))
	return b.records, nil
}

func (b *BrowserScraper) scrapeCollection(allocCtx context.Context, pageURL string) error {
	return b.retry.Do("scrape-"+pageURL, func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var tiles []productTile

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),

			// Scroll to force lazy-loaded tiles to render
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var seen = {};
					var links = document.querySelectorAll('a[href*="/products/"]');
					for (var i = 0; i < links.length; i++) {
						var link = links[i];
						var href = link.href.split('#')[0];
						if (!href || seen[href]) continue;

						var tile = link.closest('[class*="product-card"]') ||
						           link.closest('[class*="product-item"]') ||
						           link.closest('li') ||
						           link.closest('div');
						if (!tile) continue;
						seen[href] = true;

						var img = tile.querySelector('img');
						var name = '';
						var nameEl = tile.querySelector('[class*="title"]') ||
						             tile.querySelector('h2, h3');
						if (nameEl) name = nameEl.innerText.trim();
						if (!name && img && img.alt) name = img.alt.trim();

						var price = '';
						var priceEl = tile.querySelector('[class*="price"]');
						if (priceEl) {
							var m = priceEl.innerText.match(/\$\s*[\d,]+(?:\.\d{2})?/);
							if (m) price = m[0];
						}

						results.push({
							name:  name,
							url:   href,
							image: img && (img.currentSrc || img.src) || '',
							price: price
						});
					}
					return results;
				})()
			`, &tiles),
		)
		if err != nil {
			return fmt.Errorf("chromedp collection scrape: %w", err)
		}

		b.logger.Debug("[browser] %s: %d tiles", pageURL, len(tiles))

		added := 0
		for _, t := range tiles {
			if t.URL == "" || !b.visited.Add(t.URL) {
				continue
			}
			b.mu.Lock()
			b.records = append(b.records, tileToRecord(t))
			b.mu.Unlock()
			added++
		}

		b.logger.Info("[browser] %s: %d new records", pageURL, added)
		return nil
	})
}

// tileToRecord maps one extracted tile onto the raw record schema. The
// product handle (last URL path segment) serves as the product id.
func tileToRecord(t productTile) models.Record {
	rec := models.Record{
		"product_id": handleFromURL(t.URL),
		"url":        t.URL,
		"scraped_at": time.Now().UTC().Format(time.RFC3339),
	}
	if t.Name != "" {
		rec["name"] = t.Name
	}
	if t.Image != "" {
		rec["images"] = []any{t.Image}
	}
	if t.Price != "" {
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(t.Price)
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			rec["price"] = f
		}
	}
	return rec
}

func handleFromURL(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	if q := strings.Index(trimmed, "?"); q >= 0 {
		trimmed = trimmed[:q]
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
