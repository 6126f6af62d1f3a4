package services

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"catalog-reconciler/models"
	"catalog-reconciler/utils"
)

// InsightService computes catalog analytics over a canonical record set and
// renders them as terminal tables.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes distribution and price statistics.
func (s *InsightService) Generate(records []models.Record) *models.CatalogReport {
	report := &models.CatalogReport{
		ByCategory: make(map[string]int),
		ByGender:   make(map[string]int),
		ByBrand:    make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}
	report.Total = len(records)

	var total float64
	for _, rec := range records {
		if cat := rec.String("category"); cat != "" {
			report.ByCategory[cat]++
		}
		gender := rec.String("gender")
		if gender == "" {
			gender = "Unspecified"
		}
		report.ByGender[gender]++
		if brand := rec.String("brand"); brand != "" {
			report.ByBrand[brand]++
		}

		if price, ok := rec.Float("price"); ok && price > 0 {
			if report.PricedCount == 0 {
				report.MinPrice = price
				report.MaxPrice = price
			}
			if price < report.MinPrice {
				report.MinPrice = price
			}
			if price > report.MaxPrice {
				report.MaxPrice = price
			}
			total += price
			report.PricedCount++
		}
		if sale, ok := rec.Float("sale_price"); ok && sale > 0 {
			report.OnSale++
		}
		if rec["is_best_seller"] == true {
			report.BestSellers++
		}
	}

	if report.PricedCount > 0 {
		report.AveragePrice = round2(total / float64(report.PricedCount))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	return report
}

// Print renders the report to stdout.
func (s *InsightService) Print(r *models.CatalogReport) {
	fmt.Println()
	fmt.Println("  CATALOG REPORT")

	overview := [][]string{
		{"Total products", fmt.Sprintf("%d", r.Total)},
		{"With price", fmt.Sprintf("%d", r.PricedCount)},
		{"On sale", fmt.Sprintf("%d", r.OnSale)},
		{"Best sellers", fmt.Sprintf("%d", r.BestSellers)},
	}
	if r.PricedCount > 0 {
		overview = append(overview,
			[]string{"Average price", fmt.Sprintf("$%.2f", r.AveragePrice)},
			[]string{"Min price", fmt.Sprintf("$%.2f", r.MinPrice)},
			[]string{"Max price", fmt.Sprintf("$%.2f", r.MaxPrice)},
		)
	}
	fmt.Println(renderCountTable("Overview", "", overview))

	fmt.Println(renderCountTable("Category", "Products", sortedCounts(r.ByCategory)))
	fmt.Println(renderCountTable("Gender", "Products", sortedCounts(r.ByGender)))
	if len(r.ByBrand) > 0 {
		fmt.Println(renderCountTable("Brand", "Products", sortedCounts(r.ByBrand)))
	}
	fmt.Println()
}

// sortedCounts flattens a count map into rows ordered by descending count,
// ties broken by name for stable output.
func sortedCounts(m map[string]int) [][]string {
	type kv struct {
		key   string
		count int
	}
	pairs := make([]kv, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].key < pairs[j].key
	})

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.key, fmt.Sprintf("%d", p.count)})
	}
	return rows
}

func renderCountTable(leftHeader, rightHeader string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{leftHeader, rightHeader})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
