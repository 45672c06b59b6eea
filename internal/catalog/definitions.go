package catalog

import (
	"github.com/vivispa/catalog-api/internal/model"
)

// DefinitionsFor builds the filter controls of a catalog from its items,
// its bucket set and the available orderings. The location control is
// omitted when no item carries a location.
func DefinitionsFor(c *model.Catalog, opts Options) []model.FilterDefinition {
	defs := []model.FilterDefinition{
		{
			Kind:        model.FilterSearch,
			Key:         "search",
			Label:       "Search",
			Placeholder: "Search services...",
		},
		selectDefinition(c.Items, FieldCategory, "category", "Category", "All Categories"),
	}

	if len(ExtractUniqueValues(c.Items, FieldLocation)) > 0 {
		defs = append(defs, selectDefinition(c.Items, FieldLocation, "location", "Location", "All Locations"))
	}

	price := model.FilterDefinition{
		Kind:    model.FilterPriceRange,
		Key:     "priceRange",
		Label:   "Price Range",
		Default: model.All,
		Options: []model.FilterOption{{Value: model.All, Label: "All Prices", Count: len(c.Items)}},
	}
	for _, b := range opts.Buckets.Buckets {
		n := 0
		for _, item := range c.Items {
			if b.Contains(ParsePrice(item.Price)) {
				n++
			}
		}
		price.Options = append(price.Options, model.FilterOption{Value: b.Key, Label: b.Label, Count: n})
	}
	defs = append(defs, price)

	defaultSort := c.DefaultSort
	if defaultSort == model.SortNone {
		defaultSort = model.SortNameAZ
	}
	sortDef := model.FilterDefinition{
		Kind:    model.FilterSort,
		Key:     "sortBy",
		Label:   "Sort By",
		Default: string(defaultSort),
	}
	discounted := hasDiscounts(c.Items)
	for _, k := range model.SortKeys {
		if k == model.SortHighestDiscount && !discounted {
			continue
		}
		sortDef.Options = append(sortDef.Options, model.FilterOption{Value: string(k), Label: k.Label()})
	}
	return append(defs, sortDef)
}

func selectDefinition(items []model.Item, f Field, key, label, allLabel string) model.FilterDefinition {
	def := model.FilterDefinition{
		Kind:    model.FilterSelect,
		Key:     key,
		Label:   label,
		Default: model.All,
		Options: []model.FilterOption{{Value: model.All, Label: allLabel, Count: len(items)}},
	}
	counts := CountValues(items, f)
	for _, v := range ExtractUniqueValues(items, f) {
		def.Options = append(def.Options, model.FilterOption{Value: v, Label: v, Count: counts[v]})
	}
	return def
}

func hasDiscounts(items []model.Item) bool {
	for _, item := range items {
		if DiscountPercent(item) > 0 {
			return true
		}
	}
	return false
}
