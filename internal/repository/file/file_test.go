package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivispa/catalog-api/internal/catalog"
	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/pkg/validator"
)

const document = `
bucket_sets:
  coarse:
    - key: cheap
      label: Cheap
      max: 100
      max_exclusive: true
    - key: pricey
      label: Pricey
      min: 100
catalogs:
  - name: pricing
    items:
      - name: HydraFacial
        category: Facial
        price: "$149"
        location: Downtown
      - name: Laser Hair Removal - Upper Lip
        category: Laser Hair Removal
        subcategory: Facial Areas
        price: "$49.00"
        location: Edmonton Trail
  - name: offers
    bucket_set: coarse
    default_sort: highest-discount
    search_fields: [name, category, description]
    items:
      - id: hydrafacial-deluxe
        name: Deluxe HydraFacial
        category: Facials
        price: "$199"
        original_price: "$299"
        badges: [Popular]
        locations:
          - location: Downtown
            url: https://book.example/downtown
          - location: Edmonton Trail
locations:
  - name: Downtown
    address: 1411 1st Street SE, Calgary
    phone: (403) 708-7654
    hours:
      - day: Monday
        hours: 10:00 AM - 7:00 PM
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, document)
	repo := NewCatalogRepository(path, validator.New())

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "file:"+path, snap.Source)
	require.Len(t, snap.Catalogs, 2)
	assert.Equal(t, 3, snap.ItemCount())

	pricing, ok := snap.Catalog("pricing")
	require.True(t, ok)
	assert.Equal(t, catalog.StandardBucketSet, pricing.BucketSet)
	assert.Equal(t, "Facial Areas", pricing.Items[1].Subcategory)

	offers, ok := snap.Catalog("offers")
	require.True(t, ok)
	assert.Equal(t, model.SortHighestDiscount, offers.DefaultSort)
	assert.Equal(t, []model.Availability{
		{Location: "Downtown", URL: "https://book.example/downtown"},
		{Location: "Edmonton Trail"},
	}, offers.Items[0].Locations)

	coarse := snap.BucketSets["coarse"]
	require.Len(t, coarse.Buckets, 2)
	assert.True(t, coarse.Buckets[0].Contains(99.99))
	assert.False(t, coarse.Buckets[0].Contains(100))
	assert.Contains(t, snap.BucketSets, catalog.FineBucketSet)

	require.Len(t, snap.Locations, 1)
	assert.Equal(t, "10:00 AM - 7:00 PM", snap.Locations[0].Hours[0].Hours)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", "catalogs:\n  - name: pricing\n    items:\n      - category: Facial\n", "catalogs[0].items[0].name is required"},
		{"missing category", "catalogs:\n  - name: pricing\n    items:\n      - name: Peel\n", "catalogs[0].items[0].category is required"},
		{"unknown bucket set", "catalogs:\n  - name: pricing\n    bucket_set: nope\n", `unknown bucket set "nope"`},
		{"duplicate catalog", "catalogs:\n  - name: a\n  - name: a\n", `duplicate catalog "a"`},
		{"unknown sort", "catalogs:\n  - name: a\n    default_sort: random\n", `unknown default sort "random"`},
		{"unknown search field", "catalogs:\n  - name: a\n    search_fields: [price]\n", `unknown search field "price"`},
		{"unknown key", "catalogs:\n  - name: a\n    colour: red\n", "field colour not found"},
		{"empty", "", "empty document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogRepository(write(t, tt.body), validator.New()).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewCatalogRepository(filepath.Join(t.TempDir(), "none.yaml"), validator.New()).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ShippedCatalog(t *testing.T) {
	path := filepath.Join("..", "..", "..", "data", "catalog.yaml")
	snap, err := NewCatalogRepository(path, validator.New()).Load(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"pricing", "offers"} {
		c, ok := snap.Catalog(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, c.Items, name)
	}
	assert.NotEmpty(t, snap.Locations)
}

func TestDecode_KnownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("catalogs: []\nextras: true\n"))
	assert.Error(t, err)
}
