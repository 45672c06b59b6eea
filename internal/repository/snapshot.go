package repository

import (
	"fmt"
	"time"

	"github.com/vivispa/catalog-api/internal/catalog"
	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/pkg/validator"
)

// Document is the raw content of a catalog source before validation.
type Document struct {
	BucketSets map[string][]model.PriceBucket `yaml:"bucket_sets" validate:"dive,dive"`
	Catalogs   []*model.Catalog               `yaml:"catalogs" validate:"required,dive"`
	Locations  []model.Location               `yaml:"locations" validate:"dive"`
}

// BuildSnapshot validates doc and turns it into a snapshot. Built-in bucket
// sets are available unless doc redefines them; every catalog must name a
// known set and duplicate catalog names are rejected.
func BuildSnapshot(doc Document, source string, v validator.Validator) (*model.Snapshot, error) {
	if err := v.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog document: %w", err)
	}

	sets := catalog.DefaultBucketSets()
	for name, buckets := range doc.BucketSets {
		if len(buckets) == 0 {
			return nil, fmt.Errorf("bucket set %q has no buckets", name)
		}
		sets[name] = model.BucketSet{Name: name, Buckets: buckets}
	}

	seen := make(map[string]struct{}, len(doc.Catalogs))
	for _, c := range doc.Catalogs {
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("duplicate catalog %q", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.BucketSet == "" {
			c.BucketSet = catalog.StandardBucketSet
		}
		if _, ok := sets[c.BucketSet]; !ok {
			return nil, fmt.Errorf("catalog %q uses unknown bucket set %q", c.Name, c.BucketSet)
		}
		if !c.DefaultSort.Valid() {
			return nil, fmt.Errorf("catalog %q has unknown default sort %q", c.Name, c.DefaultSort)
		}
		for _, f := range c.SearchFields {
			if _, ok := catalog.ParseField(f); !ok {
				return nil, fmt.Errorf("catalog %q has unknown search field %q", c.Name, f)
			}
		}
		if c.Items == nil {
			c.Items = []model.Item{}
		}
	}

	locations := doc.Locations
	if locations == nil {
		locations = []model.Location{}
	}

	return &model.Snapshot{
		LoadedAt:   time.Now().UTC(),
		Source:     source,
		Catalogs:   doc.Catalogs,
		BucketSets: sets,
		Locations:  locations,
	}, nil
}
