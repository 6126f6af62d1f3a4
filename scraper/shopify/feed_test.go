package shopify

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-reconciler/utils"
)

func testFeedClient(base string) *FeedClient {
	logger := utils.NewLogger()
	return &FeedClient{
		http:   http.DefaultClient,
		logger: logger,
		retry:  utils.NewRetry(1, 0, logger),
		base:   base,
	}
}

func feedJSON(titles ...string) string {
	products := ""
	for i, title := range titles {
		if i > 0 {
			products += ","
		}
		products += fmt.Sprintf(`{"id": %d, "title": %q, "handle": "h%d", "variants": [{"price": "58.00"}]}`, i+1, title, i+1)
	}
	return `{"products": [` + products + `]}`
}

func TestFetchStorePagesUntilEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, feedJSON("Jogger", "Tee"))
		case "2":
			fmt.Fprint(w, feedJSON("Beanie"))
		default:
			fmt.Fprint(w, `{"products": []}`)
		}
	}))
	defer srv.Close()

	c := testFeedClient(srv.URL)
	records, err := c.FetchStore("example.myshopify.com", 0)
	if err != nil {
		t.Fatalf("FetchStore: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	if got := records[0].String("url"); got != "https://example.myshopify.com/products/h1" {
		t.Errorf("url: got %q", got)
	}
}

func TestFetchStoreRespectsMaxProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedJSON("Jogger", "Tee", "Beanie"))
	}))
	defer srv.Close()

	c := testFeedClient(srv.URL)
	records, err := c.FetchStore("example.myshopify.com", 2)
	if err != nil {
		t.Fatalf("FetchStore: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records: got %d, want capped at 2", len(records))
	}
}

func TestFetchStoreHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := testFeedClient(srv.URL)
	if _, err := c.FetchStore("example.myshopify.com", 0); err == nil {
		t.Fatal("expected error on http 403")
	}
}

func TestMapFeedProduct(t *testing.T) {
	p := feedProduct{
		ID:          9981,
		Title:       "Commuter Jogger",
		Handle:      "commuter-jogger",
		BodyHTML:    "<p>Stretch <b>knit</b> jogger.</p>",
		Vendor:      "Rhone",
		ProductType: "Mens Bottoms",
		Tags:        []string{"bestseller"},
	}
	p.Options = []struct {
		Name string `json:"name"`
	}{{Name: "Color"}, {Name: "Size"}}
	p.Variants = []struct {
		Price          string `json:"price"`
		CompareAtPrice string `json:"compare_at_price"`
		Option1        string `json:"option1"`
		Option2        string `json:"option2"`
		Option3        string `json:"option3"`
	}{
		{Price: "78.00", CompareAtPrice: "98.00", Option1: "Navy", Option2: "M"},
		{Price: "88.00", CompareAtPrice: "98.00", Option1: "Black", Option2: "L"},
	}
	p.Images = []struct {
		Src string `json:"src"`
	}{{Src: "https://cdn/a.jpg"}, {Src: ""}}

	rec := mapFeedProduct(p, "example.myshopify.com")

	if got := rec.String("product_id"); got != "9981" {
		t.Errorf("product_id: got %q", got)
	}
	if got := rec.Strings("colors"); len(got) != 2 || got[0] != "Black" || got[1] != "Navy" {
		t.Errorf("colors: got %v, want sorted [Black Navy]", got)
	}
	if got := rec.Strings("sizes"); len(got) != 2 || got[0] != "L" || got[1] != "M" {
		t.Errorf("sizes: got %v, want sorted [L M]", got)
	}
	if price, _ := rec.Float("price"); price != 78.0 {
		t.Errorf("price: got %v, want lowest variant 78", rec["price"])
	}
	if sale, _ := rec.Float("sale_price"); sale != 78.0 {
		t.Errorf("sale_price: got %v, want 78", rec["sale_price"])
	}
	if original, _ := rec.Float("original_price"); original != 98.0 {
		t.Errorf("original_price: got %v, want 98", rec["original_price"])
	}
	if got := rec.String("description"); got != "Stretch knit jogger." {
		t.Errorf("description: got %q, want tags stripped", got)
	}
	if got := rec.Strings("images"); len(got) != 1 || got[0] != "https://cdn/a.jpg" {
		t.Errorf("images: got %v, want empty src dropped", got)
	}
	if got := rec.String("gender"); got != "Men" {
		t.Errorf("gender: got %q, want Men from product type", got)
	}
}

func TestMapFeedProductNoSaleWhenPriceMatchesCompareAt(t *testing.T) {
	p := feedProduct{ID: 1, Title: "Tee", Handle: "tee"}
	p.Variants = []struct {
		Price          string `json:"price"`
		CompareAtPrice string `json:"compare_at_price"`
		Option1        string `json:"option1"`
		Option2        string `json:"option2"`
		Option3        string `json:"option3"`
	}{{Price: "58.00", CompareAtPrice: "58.00"}}

	rec := mapFeedProduct(p, "example.myshopify.com")
	if rec.Has("sale_price") || rec.Has("original_price") {
		t.Errorf("full-price product carries sale fields: %v", rec)
	}
}

func TestGenderFromFeed(t *testing.T) {
	tests := []struct {
		name string
		p    feedProduct
		want string
	}{
		{"womens tag beats mens title", feedProduct{Tags: []string{"Womens Apparel"}, Title: "Mens Tee"}, "Women"},
		{"unisex tag", feedProduct{Tags: []string{"Unisex"}}, "Unisex"},
		{"mens tag", feedProduct{Tags: []string{"Mens"}}, "Men"},
		{"type fallback", feedProduct{ProductType: "Womens Leggings"}, "Women"},
		{"title fallback", feedProduct{Title: "Mens Commuter Pant"}, "Men"},
		{"no signal", feedProduct{Title: "Gift Card"}, ""},
	}

	for _, tt := range tests {
		if got := genderFromFeed(tt.p); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
