package model

import "math"

// All is the sentinel value meaning "no restriction" for select filters.
const All = "all"

// MainSubcategory is the group key for items that carry no subcategory.
const MainSubcategory = "main"

// Criteria is the user's current filter selection.
type Criteria struct {
	Search     string  `json:"search" form:"search"`
	Category   string  `json:"category" form:"category"`
	Location   string  `json:"location" form:"location"`
	PriceRange string  `json:"price_range" form:"priceRange"`
	SortBy     SortKey `json:"sort_by,omitempty" form:"sortBy" binding:"omitempty,sortkey"`
}

// DefaultCriteria returns criteria matching every item.
func DefaultCriteria() Criteria {
	return Criteria{
		Category:   All,
		Location:   All,
		PriceRange: All,
	}
}

// Normalize replaces empty select values with All.
func (c Criteria) Normalize() Criteria {
	if c.Category == "" {
		c.Category = All
	}
	if c.Location == "" {
		c.Location = All
	}
	if c.PriceRange == "" {
		c.PriceRange = All
	}
	return c
}

// SortKey names an ordering of a result list.
type SortKey string

const (
	SortNone            SortKey = ""
	SortNameAZ          SortKey = "name-az"
	SortNameZA          SortKey = "name-za"
	SortPriceLowHigh    SortKey = "price-low-high"
	SortPriceHighLow    SortKey = "price-high-low"
	SortHighestDiscount SortKey = "highest-discount"
)

// SortKeys lists the known orderings in presentation order.
var SortKeys = []SortKey{SortNameAZ, SortNameZA, SortPriceLowHigh, SortPriceHighLow, SortHighestDiscount}

// Valid reports whether k is a known ordering or SortNone.
func (k SortKey) Valid() bool {
	if k == SortNone {
		return true
	}
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// Label is the human readable name of the ordering.
func (k SortKey) Label() string {
	switch k {
	case SortNameAZ:
		return "Name (A-Z)"
	case SortNameZA:
		return "Name (Z-A)"
	case SortPriceLowHigh:
		return "Price (Low to High)"
	case SortPriceHighLow:
		return "Price (High to Low)"
	case SortHighestDiscount:
		return "Highest Discount"
	}
	return string(k)
}

// PriceBucket is a named numeric price interval. A nil bound is unbounded.
type PriceBucket struct {
	Key          string   `json:"key" yaml:"key" validate:"required"`
	Label        string   `json:"label" yaml:"label"`
	Min          *float64 `json:"min,omitempty" yaml:"min"`
	Max          *float64 `json:"max,omitempty" yaml:"max"`
	MinExclusive bool     `json:"min_exclusive,omitempty" yaml:"min_exclusive"`
	MaxExclusive bool     `json:"max_exclusive,omitempty" yaml:"max_exclusive"`
}

// Contains reports whether price falls within the bucket. NaN is never contained.
func (b PriceBucket) Contains(price float64) bool {
	if math.IsNaN(price) {
		return false
	}
	if b.Min != nil {
		if b.MinExclusive && price <= *b.Min {
			return false
		}
		if !b.MinExclusive && price < *b.Min {
			return false
		}
	}
	if b.Max != nil {
		if b.MaxExclusive && price >= *b.Max {
			return false
		}
		if !b.MaxExclusive && price > *b.Max {
			return false
		}
	}
	return true
}

// BucketSet is an ordered, named collection of price buckets.
type BucketSet struct {
	Name    string        `json:"name" yaml:"name"`
	Buckets []PriceBucket `json:"buckets" yaml:"buckets" validate:"dive"`
}

// Lookup returns the bucket with the given key.
func (s BucketSet) Lookup(key string) (PriceBucket, bool) {
	for _, b := range s.Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return PriceBucket{}, false
}

// SubcategoryGroup holds the items of one subcategory in input order.
type SubcategoryGroup struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// CategoryGroup holds the subcategory groups of one category.
type CategoryGroup struct {
	Category         string             `json:"category"`
	HasSubcategories bool               `json:"has_subcategories"`
	Subcategories    []SubcategoryGroup `json:"subcategories"`
}

// Subcategory returns the group with the given key.
func (g CategoryGroup) Subcategory(key string) (SubcategoryGroup, bool) {
	for _, s := range g.Subcategories {
		if s.Key == key {
			return s, true
		}
	}
	return SubcategoryGroup{}, false
}

// ActiveFilter is one removable chip describing a non-default criterion.
type ActiveFilter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// Summary describes a filtered result list relative to its catalog.
type Summary struct {
	Count      int      `json:"count"`
	Total      int      `json:"total"`
	Priced     int      `json:"priced"`
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
	AvgPrice   float64  `json:"avg_price"`
	HasFilters bool     `json:"has_filters"`
	Categories []string `json:"categories"`
}

// FilterKind is the control type of a filter definition.
type FilterKind string

const (
	FilterSearch     FilterKind = "search"
	FilterSelect     FilterKind = "select"
	FilterPriceRange FilterKind = "price_range"
	FilterSort       FilterKind = "sort"
)

// FilterOption is one selectable value of a filter definition.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FilterDefinition describes one filter control a client can render.
type FilterDefinition struct {
	Kind        FilterKind     `json:"kind"`
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder,omitempty"`
	Default     string         `json:"default"`
	Options     []FilterOption `json:"options,omitempty"`
}
