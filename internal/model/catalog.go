package model

import "time"

// Item is a single priced, categorized entry of a catalog: a pricing row,
// a service or a promotional offer.
type Item struct {
	ID            string         `json:"id,omitempty" yaml:"id" db:"item_id"`
	Slug          string         `json:"slug,omitempty" yaml:"slug" db:"slug"`
	Name          string         `json:"name" yaml:"name" db:"name" validate:"required"`
	Category      string         `json:"category" yaml:"category" db:"category" validate:"required"`
	Subcategory   string         `json:"subcategory,omitempty" yaml:"subcategory" db:"subcategory"`
	Price         string         `json:"price" yaml:"price" db:"price"`
	OriginalPrice string         `json:"original_price,omitempty" yaml:"original_price" db:"original_price"`
	Location      string         `json:"location,omitempty" yaml:"location" db:"location"`
	Locations     []Availability `json:"locations,omitempty" yaml:"locations" db:"-" validate:"dive"`
	URL           string         `json:"url" yaml:"url" db:"url"`
	Description   string         `json:"description,omitempty" yaml:"description" db:"description"`
	Badges        []string       `json:"badges,omitempty" yaml:"badges" db:"-"`
	Tags          []string       `json:"tags,omitempty" yaml:"tags" db:"-"`
}

// Availability describes an item offered at one physical location, with the
// booking link and badges specific to that location.
type Availability struct {
	Location string   `json:"location" yaml:"location" db:"location" validate:"required"`
	URL      string   `json:"url" yaml:"url" db:"url"`
	Badges   []string `json:"badges,omitempty" yaml:"badges" db:"-"`
}

// AvailableAt reports whether the item is offered at location, either through
// its single Location field or its multi-location list.
func (i Item) AvailableAt(location string) bool {
	if i.Location == location {
		return true
	}
	for _, a := range i.Locations {
		if a.Location == location {
			return true
		}
	}
	return false
}

// Catalog is a named list of items sharing one price bucket set.
type Catalog struct {
	Name         string   `json:"name" yaml:"name" db:"name" validate:"required"`
	Title        string   `json:"title,omitempty" yaml:"title" db:"title"`
	BucketSet    string   `json:"bucket_set" yaml:"bucket_set" db:"bucket_set"`
	SearchFields []string `json:"search_fields,omitempty" yaml:"search_fields" db:"-"`
	DefaultSort  SortKey  `json:"default_sort,omitempty" yaml:"default_sort" db:"default_sort"`
	Items        []Item   `json:"items" yaml:"items" db:"-" validate:"dive"`
}

// Snapshot is the immutable set of catalogs served at a point in time.
type Snapshot struct {
	Version    int64                `json:"version"`
	LoadedAt   time.Time            `json:"loaded_at"`
	Source     string               `json:"source"`
	Catalogs   []*Catalog           `json:"catalogs"`
	BucketSets map[string]BucketSet `json:"bucket_sets"`
	Locations  []Location           `json:"locations"`
}

// Catalog returns the catalog with the given name.
func (s *Snapshot) Catalog(name string) (*Catalog, bool) {
	for _, c := range s.Catalogs {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ItemCount returns the number of items across all catalogs.
func (s *Snapshot) ItemCount() int {
	n := 0
	for _, c := range s.Catalogs {
		n += len(c.Items)
	}
	return n
}
