// Package catalog filters, sorts and groups catalog items. Every function is
// pure: no I/O and no shared state.
package catalog

import (
	"strings"

	"github.com/vivispa/catalog-api/internal/model"
)

// Field names an item attribute the pipeline can read.
type Field string

const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldSubcategory Field = "subcategory"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
	FieldTags        Field = "tags"
)

// DefaultSearchFields are the fields the search stage matches against.
var DefaultSearchFields = []Field{FieldName, FieldCategory, FieldSubcategory}

// ParseField returns the field with the given name.
func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldName, FieldCategory, FieldSubcategory, FieldLocation, FieldDescription, FieldTags:
		return f, true
	}
	return "", false
}

// values returns the non-empty values of f on item.
func values(item model.Item, f Field) []string {
	switch f {
	case FieldName:
		return nonEmpty(item.Name)
	case FieldCategory:
		return nonEmpty(item.Category)
	case FieldSubcategory:
		return nonEmpty(item.Subcategory)
	case FieldDescription:
		return nonEmpty(item.Description)
	case FieldTags:
		return item.Tags
	case FieldLocation:
		out := nonEmpty(item.Location)
		for _, a := range item.Locations {
			if a.Location != "" {
				out = append(out, a.Location)
			}
		}
		return out
	}
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// Options configures a pipeline run for one catalog.
type Options struct {
	SearchFields []Field
	Buckets      model.BucketSet
}

// DefaultOptions matches name, category and subcategory and uses the standard buckets.
func DefaultOptions() Options {
	return Options{SearchFields: DefaultSearchFields, Buckets: StandardBuckets()}
}

// OptionsFor builds the options of a catalog from its configuration.
func OptionsFor(c *model.Catalog, sets map[string]model.BucketSet) Options {
	opts := DefaultOptions()
	if len(c.SearchFields) > 0 {
		fields := make([]Field, 0, len(c.SearchFields))
		for _, name := range c.SearchFields {
			if f, ok := ParseField(name); ok {
				fields = append(fields, f)
			}
		}
		if len(fields) > 0 {
			opts.SearchFields = fields
		}
	}
	if set, ok := BucketSetFor(c, sets); ok {
		opts.Buckets = set
	}
	return opts
}

type predicate func(model.Item) bool

// stages returns the active stages for c in pipeline order: search,
// category, location, price range. Inactive criteria contribute no stage.
func stages(c model.Criteria, opts Options) []predicate {
	var out []predicate

	if term := strings.ToLower(strings.TrimSpace(c.Search)); term != "" {
		fields := opts.SearchFields
		if len(fields) == 0 {
			fields = DefaultSearchFields
		}
		out = append(out, func(item model.Item) bool {
			for _, f := range fields {
				for _, v := range values(item, f) {
					if strings.Contains(strings.ToLower(v), term) {
						return true
					}
				}
			}
			return false
		})
	}

	if active(c.Category) {
		category := c.Category
		out = append(out, func(item model.Item) bool {
			return item.Category == category
		})
	}

	if active(c.Location) {
		location := c.Location
		out = append(out, func(item model.Item) bool {
			return item.AvailableAt(location)
		})
	}

	if active(c.PriceRange) {
		if bucket, ok := opts.Buckets.Lookup(c.PriceRange); ok {
			out = append(out, func(item model.Item) bool {
				return bucket.Contains(ParsePrice(item.Price))
			})
		}
	}

	return out
}

func active(v string) bool {
	return v != "" && v != model.All
}

// Filter narrows items by c using the default search fields and the
// standard bucket set.
func Filter(items []model.Item, c model.Criteria) []model.Item {
	return FilterWith(items, c, DefaultOptions())
}

// FilterWith narrows items by c. The result keeps input order and never
// shares its backing array with items. An unknown price range key does not
// restrict the result.
func FilterWith(items []model.Item, c model.Criteria, opts Options) []model.Item {
	preds := stages(c, opts)
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if matches(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item model.Item, preds []predicate) bool {
	for _, p := range preds {
		if !p(item) {
			return false
		}
	}
	return true
}

// Query filters items and then applies the criteria's sort key.
func Query(items []model.Item, c model.Criteria, opts Options) []model.Item {
	out := FilterWith(items, c, opts)
	if c.SortBy != model.SortNone {
		sortInPlace(out, c.SortBy)
	}
	return out
}

// HasFilters reports whether any criterion restricts the result.
func HasFilters(c model.Criteria) bool {
	return strings.TrimSpace(c.Search) != "" || active(c.Category) || active(c.Location) || active(c.PriceRange)
}
