package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vivispa/catalog-api/internal/model"
)

// Summarize describes filtered relative to a catalog of total items.
// Unparseable prices are skipped; amounts are rounded to cents.
func Summarize(filtered []model.Item, total int, c model.Criteria) model.Summary {
	s := model.Summary{
		Count:      len(filtered),
		Total:      total,
		HasFilters: HasFilters(c),
		Categories: ExtractUniqueValues(filtered, FieldCategory),
	}

	var (
		sum    decimal.Decimal
		lo, hi decimal.Decimal
	)
	for _, item := range filtered {
		p := ParsePrice(item.Price)
		if math.IsNaN(p) {
			continue
		}
		d := decimal.NewFromFloat(p)
		if s.Priced == 0 || d.LessThan(lo) {
			lo = d
		}
		if s.Priced == 0 || d.GreaterThan(hi) {
			hi = d
		}
		sum = sum.Add(d)
		s.Priced++
	}
	if s.Priced == 0 {
		return s
	}

	s.MinPrice, _ = lo.Round(2).Float64()
	s.MaxPrice, _ = hi.Round(2).Float64()
	s.AvgPrice, _ = sum.Div(decimal.NewFromInt(int64(s.Priced))).Round(2).Float64()
	return s
}

// ActiveFilters lists the non-default criteria as labelled chips in
// pipeline order. Price labels come from buckets; unknown keys use the key.
func ActiveFilters(c model.Criteria, buckets model.BucketSet) []model.ActiveFilter {
	out := make([]model.ActiveFilter, 0, 4)
	if term := strings.TrimSpace(c.Search); term != "" {
		out = append(out, model.ActiveFilter{Key: "search", Value: term, Label: `"` + term + `"`})
	}
	if active(c.Category) {
		out = append(out, model.ActiveFilter{Key: "category", Value: c.Category, Label: c.Category})
	}
	if active(c.Location) {
		out = append(out, model.ActiveFilter{Key: "location", Value: c.Location, Label: c.Location})
	}
	if active(c.PriceRange) {
		label := c.PriceRange
		if b, ok := buckets.Lookup(c.PriceRange); ok && b.Label != "" {
			label = b.Label
		}
		out = append(out, model.ActiveFilter{Key: "priceRange", Value: c.PriceRange, Label: label})
	}
	return out
}
