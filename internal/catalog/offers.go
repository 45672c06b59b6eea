package catalog

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vivispa/catalog-api/internal/model"
)

// DiscountPercent returns the whole-number percentage saved against the
// item's original price. Items without a parseable positive original and
// current price, or priced above their original, report 0.
func DiscountPercent(item model.Item) int {
	if item.OriginalPrice == "" {
		return 0
	}
	orig, cur := ParsePrice(item.OriginalPrice), ParsePrice(item.Price)
	if math.IsNaN(orig) || math.IsNaN(cur) || orig <= 0 || cur <= 0 || cur >= orig {
		return 0
	}
	o := decimal.NewFromFloat(orig)
	pct := o.Sub(decimal.NewFromFloat(cur)).Div(o).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// ForLocation returns the items offered at location as they appear there:
// the booking URL is the location's and the location's badges follow the
// item's own. Items keep input order.
func ForLocation(items []model.Item, location string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !item.AvailableAt(location) {
			continue
		}
		view := item
		view.Location = location
		view.Locations = nil
		view.Badges = append([]string(nil), item.Badges...)
		for _, a := range item.Locations {
			if a.Location != location {
				continue
			}
			if a.URL != "" {
				view.URL = a.URL
			}
			view.Badges = mergeBadges(view.Badges, a.Badges)
			view.Locations = []model.Availability{a}
			break
		}
		out = append(out, view)
	}
	return out
}

func mergeBadges(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, b := range list {
			if _, ok := seen[b]; ok {
				continue
			}
			seen[b] = struct{}{}
			out = append(out, b)
		}
	}
	return out
}
