package catalog

import (
	"sort"

	"github.com/vivispa/catalog-api/internal/model"
)

// GroupByCategory partitions items by category and then by subcategory,
// using model.MainSubcategory for items without one. Categories and
// subcategories appear in first-seen order; items keep input order.
func GroupByCategory(items []model.Item) []model.CategoryGroup {
	groups := make([]model.CategoryGroup, 0)
	catIdx := make(map[string]int)
	subIdx := make(map[string]map[string]int)

	for _, item := range items {
		ci, ok := catIdx[item.Category]
		if !ok {
			ci = len(groups)
			catIdx[item.Category] = ci
			subIdx[item.Category] = make(map[string]int)
			groups = append(groups, model.CategoryGroup{Category: item.Category})
		}

		key := item.Subcategory
		if key == "" {
			key = model.MainSubcategory
		}
		g := &groups[ci]
		si, ok := subIdx[item.Category][key]
		if !ok {
			si = len(g.Subcategories)
			subIdx[item.Category][key] = si
			g.Subcategories = append(g.Subcategories, model.SubcategoryGroup{Key: key})
		}
		g.Subcategories[si].Items = append(g.Subcategories[si].Items, item)
	}

	for i := range groups {
		groups[i].HasSubcategories = hasSubcategories(groups[i])
	}
	return groups
}

func hasSubcategories(g model.CategoryGroup) bool {
	switch len(g.Subcategories) {
	case 0:
		return false
	case 1:
		return g.Subcategories[0].Key != model.MainSubcategory
	}
	return true
}

// ExtractUniqueValues returns the sorted distinct non-empty values of field
// across items. Location includes every multi-location entry.
func ExtractUniqueValues(items []model.Item, field Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, item := range items {
		for _, v := range values(item, field) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// CountValues returns how many items carry each value of field. An item
// listing the same location twice is counted once.
func CountValues(items []model.Item, field Field) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		seen := make(map[string]struct{})
		for _, v := range values(item, field) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			counts[v]++
		}
	}
	return counts
}
