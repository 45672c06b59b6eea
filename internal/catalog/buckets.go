package catalog

import "github.com/vivispa/catalog-api/internal/model"

const (
	// StandardBucketSet is the bucket set used by the pricing and offers catalogs.
	StandardBucketSet = "standard"
	// FineBucketSet is the narrower bucket set used by service listings.
	FineBucketSet = "fine"
)

func bound(v float64) *float64 { return &v }

// StandardBuckets returns the under-100 / 100-200 / 200-500 / over-500 set.
// Both bounds of the middle buckets are inclusive, so 200 belongs to both.
func StandardBuckets() model.BucketSet {
	return model.BucketSet{
		Name: StandardBucketSet,
		Buckets: []model.PriceBucket{
			{Key: "under-100", Label: "Under $100", Max: bound(100), MaxExclusive: true},
			{Key: "100-200", Label: "$100 - $200", Min: bound(100), Max: bound(200)},
			{Key: "200-500", Label: "$200 - $500", Min: bound(200), Max: bound(500)},
			{Key: "over-500", Label: "Over $500", Min: bound(500), MinExclusive: true},
		},
	}
}

// FineBuckets returns the 0-50 / 51-100 / 101-200 / 201-300 / 301+ set.
// Prices between the whole-dollar bounds (50.5) fall in no bucket.
func FineBuckets() model.BucketSet {
	return model.BucketSet{
		Name: FineBucketSet,
		Buckets: []model.PriceBucket{
			{Key: "0-50", Label: "$0 - $50", Min: bound(0), Max: bound(50)},
			{Key: "51-100", Label: "$51 - $100", Min: bound(51), Max: bound(100)},
			{Key: "101-200", Label: "$101 - $200", Min: bound(101), Max: bound(200)},
			{Key: "201-300", Label: "$201 - $300", Min: bound(201), Max: bound(300)},
			{Key: "301+", Label: "$301+", Min: bound(301)},
		},
	}
}

// DefaultBucketSets returns the built-in bucket sets keyed by name.
func DefaultBucketSets() map[string]model.BucketSet {
	return map[string]model.BucketSet{
		StandardBucketSet: StandardBuckets(),
		FineBucketSet:     FineBuckets(),
	}
}

// BucketSetFor resolves the bucket set a catalog refers to, falling back to
// the standard set when the catalog names none.
func BucketSetFor(c *model.Catalog, sets map[string]model.BucketSet) (model.BucketSet, bool) {
	name := c.BucketSet
	if name == "" {
		name = StandardBucketSet
	}
	if s, ok := sets[name]; ok {
		return s, true
	}
	if s, ok := DefaultBucketSets()[name]; ok {
		return s, true
	}
	return model.BucketSet{}, false
}
