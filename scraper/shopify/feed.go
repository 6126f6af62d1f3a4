// Package shopify collects raw product records from Shopify storefronts,
// either through the public products.json feed or, for stores that block
// plain HTTP clients, through a real browser.
package shopify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog-reconciler/config"
	"catalog-reconciler/models"
	"catalog-reconciler/utils"
)

const feedPageSize = 250

var htmlTagRegexp = regexp.MustCompile(`<[^>]+>`)

// feedProduct mirrors the slice of the Shopify products.json schema the
// mapper needs.
type feedProduct struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Handle      string   `json:"handle"`
	BodyHTML    string   `json:"body_html"`
	Vendor      string   `json:"vendor"`
	ProductType string   `json:"product_type"`
	Tags        []string `json:"tags"`
	Variants    []struct {
		Price          string `json:"price"`
		CompareAtPrice string `json:"compare_at_price"`
		Option1        string `json:"option1"`
		Option2        string `json:"option2"`
		Option3        string `json:"option3"`
	} `json:"variants"`
	Options []struct {
		Name string `json:"name"`
	} `json:"options"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
}

type feedPage struct {
	Products []feedProduct `json:"products"`
}

// FeedClient pages through a store's public products.json feed and maps
// each product onto the raw record schema the reconciler ingests.
type FeedClient struct {
	http   *http.Client
	logger *utils.Logger
	retry  *utils.RetryConfig
	delay  time.Duration
	base   string // override for tests; "" means https://<store>
}

// NewFeedClient creates a FeedClient with retry and rate settings from cfg.
func NewFeedClient(cfg *config.Config, logger *utils.Logger) *FeedClient {
	return &FeedClient{
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		retry:  utils.NewRetry(cfg.MaxRetries, 2*time.Second, logger),
		delay:  time.Duration(cfg.RateLimitMs) * time.Millisecond,
	}
}

// FetchStore collects products from one store domain. maxProducts of 0
// means no limit.
func (c *FeedClient) FetchStore(store string, maxProducts int) ([]models.Record, error) {
	base := c.base
	if base == "" {
		base = "https://" + store
	}

	var records []models.Record
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", base, feedPageSize, page)

		var products []feedProduct
		err := c.retry.Do(fmt.Sprintf("feed-page-%d", page), func() error {
			var err error
			products, err = c.fetchPage(url)
			return err
		})
		if err != nil {
			return records, fmt.Errorf("shopify: %s page %d: %w", store, page, err)
		}
		if len(products) == 0 {
			break
		}

		for _, p := range products {
			records = append(records, mapFeedProduct(p, store))
			if maxProducts > 0 && len(records) >= maxProducts {
				c.logger.Info("[shopify] %s: reached max products (%d)", store, maxProducts)
				return records, nil
			}
		}

		c.logger.Info("[shopify] %s: page %d done, %d products so far", store, page, len(records))
		time.Sleep(c.delay)
	}

	c.logger.Info("[shopify] %s: feed complete, %d products", store, len(records))
	return records, nil
}

func (c *FeedClient) fetchPage(url string) ([]feedProduct, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var page feedPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return page.Products, nil
}

// mapFeedProduct converts a Shopify feed product to the raw record schema:
// variant options become colors/sizes, the lowest variant price becomes the
// price, a lower price against compare-at becomes sale_price.
func mapFeedProduct(p feedProduct, store string) models.Record {
	colors := map[string]struct{}{}
	sizes := map[string]struct{}{}
	var prices, comparePrices []float64

	for _, v := range p.Variants {
		if f, err := strconv.ParseFloat(v.Price, 64); err == nil {
			prices = append(prices, f)
		}
		if f, err := strconv.ParseFloat(v.CompareAtPrice, 64); err == nil {
			comparePrices = append(comparePrices, f)
		}
		for i, opt := range p.Options {
			val := [3]string{v.Option1, v.Option2, v.Option3}[minInt(i, 2)]
			if val == "" {
				continue
			}
			switch {
			case strings.Contains(strings.ToLower(opt.Name), "color"),
				strings.Contains(strings.ToLower(opt.Name), "colour"):
				colors[val] = struct{}{}
			case strings.Contains(strings.ToLower(opt.Name), "size"):
				sizes[val] = struct{}{}
			}
		}
	}

	rec := models.Record{
		"product_id": strconv.FormatInt(p.ID, 10),
		"name":       p.Title,
		"url":        "https://" + store + "/products/" + p.Handle,
		"brand":      p.Vendor,
		"category":   p.ProductType,
		"colors":     setToList(colors),
		"sizes":      setToList(sizes),
		"images":     imageList(p),
		"scraped_at": time.Now().UTC().Format(time.RFC3339),
	}

	if desc := strings.TrimSpace(htmlTagRegexp.ReplaceAllString(p.BodyHTML, "")); desc != "" {
		if len(desc) > 1000 {
			desc = desc[:1000]
		}
		rec["description"] = desc
	}

	if len(prices) > 0 {
		price := minFloat(prices)
		rec["price"] = price
		if len(comparePrices) > 0 {
			if original := minFloat(comparePrices); price < original {
				rec["original_price"] = original
				rec["sale_price"] = price
			}
		}
	}

	if g := genderFromFeed(p); g != "" {
		rec["gender"] = g
	}

	return rec
}

// genderFromFeed checks tags, then product type, then title. "men" is a
// substring of "women", so the women checks come first at each step.
func genderFromFeed(p feedProduct) string {
	for _, tag := range p.Tags {
		lower := strings.ToLower(tag)
		switch {
		case strings.Contains(lower, "women"), strings.Contains(lower, "ladies"):
			return "Women"
		case strings.Contains(lower, "unisex"):
			return "Unisex"
		case strings.Contains(lower, "men"):
			return "Men"
		}
	}

	for _, txt := range []string{p.ProductType, p.Title} {
		lower := strings.ToLower(txt)
		if strings.Contains(lower, "women") || strings.Contains(lower, "ladies") {
			return "Women"
		}
		if strings.Contains(lower, "men") {
			return "Men"
		}
	}
	return ""
}

func imageList(p feedProduct) []any {
	out := make([]any, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Src != "" {
			out = append(out, img.Src)
		}
	}
	return out
}

func setToList(set map[string]struct{}) []any {
	keys := make([]string, 0, len(set))
	for v := range set {
		keys = append(keys, v)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, v := range keys {
		out = append(out, v)
	}
	return out
}

func minFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
