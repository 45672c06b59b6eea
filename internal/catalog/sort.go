package catalog

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vivispa/catalog-api/internal/model"
)

// Sort returns a stably sorted copy of items. Unknown keys keep input order.
func Sort(items []model.Item, key model.SortKey) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	sortInPlace(out, key)
	return out
}

func sortInPlace(items []model.Item, key model.SortKey) {
	switch key {
	case model.SortNameAZ, model.SortNameZA:
		// Collators keep internal buffers and are not safe for concurrent use.
		col := collate.New(language.English)
		sort.SliceStable(items, func(i, j int) bool {
			cmp := col.CompareString(items[i].Name, items[j].Name)
			if key == model.SortNameZA {
				return cmp > 0
			}
			return cmp < 0
		})
	case model.SortPriceLowHigh, model.SortPriceHighLow:
		prices := make([]float64, len(items))
		for i := range items {
			prices[i] = ParsePrice(items[i].Price)
		}
		idx := make([]int, len(items))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			pa, pb := prices[idx[a]], prices[idx[b]]
			switch {
			case math.IsNaN(pa):
				return false
			case math.IsNaN(pb):
				return true
			case key == model.SortPriceHighLow:
				return pa > pb
			default:
				return pa < pb
			}
		})
		reorder(items, idx)
	case model.SortHighestDiscount:
		sort.SliceStable(items, func(i, j int) bool {
			return DiscountPercent(items[i]) > DiscountPercent(items[j])
		})
	}
}

func reorder(items []model.Item, idx []int) {
	sorted := make([]model.Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}
