package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vivispa/catalog-api/internal/model"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$149", 149},
		{"$1,200", 1200},
		{"$1,200.00", 1200},
		{"$85.50", 85.5},
		{"From $99+", 99},
		{"-$5", 5},
		{"1.2.3", 1.2},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.in))
		})
	}

	for _, in := range []string{"", "Free", "$", ".", "call us"} {
		assert.True(t, math.IsNaN(ParsePrice(in)), in)
	}
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name          string
		price, orig   string
		want          int
	}{
		{"quarter off", "$150", "$200", 25},
		{"rounds", "$199", "$299", 33},
		{"rounds half up", "$87.50", "$100", 13},
		{"no original", "$150", "", 0},
		{"unparseable original", "$150", "Call", 0},
		{"free item", "$0", "$100", 0},
		{"price above original", "$250", "$200", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountPercent(model.Item{Price: tt.price, OriginalPrice: tt.orig}))
		})
	}
}

func TestForLocation(t *testing.T) {
	items := []model.Item{
		{
			ID: "hydrafacial", Name: "HydraFacial", Category: "Offers", URL: "https://book.example/all",
			Badges: []string{"Popular"},
			Locations: []model.Availability{
				{Location: "Downtown", URL: "https://book.example/downtown", Badges: []string{"New", "Popular"}},
				{Location: "Edmonton Trail"},
			},
		},
		{ID: "lash", Name: "Lash Lift", Category: "Offers", Location: "Edmonton Trail", URL: "https://book.example/lash"},
		{ID: "peel", Name: "Peel", Category: "Offers", Location: "Downtown"},
	}

	downtown := ForLocation(items, "Downtown")
	assert.Equal(t, []string{"HydraFacial", "Peel"}, names(downtown))
	assert.Equal(t, "https://book.example/downtown", downtown[0].URL)
	assert.Equal(t, []string{"Popular", "New"}, downtown[0].Badges)
	assert.Equal(t, "Downtown", downtown[0].Location)
	assert.Len(t, downtown[0].Locations, 1)

	trail := ForLocation(items, "Edmonton Trail")
	assert.Equal(t, []string{"HydraFacial", "Lash Lift"}, names(trail))
	assert.Equal(t, "https://book.example/all", trail[0].URL, "empty location URL keeps the item URL")
	assert.Equal(t, []string{"Popular"}, trail[0].Badges)

	// the source items are untouched
	assert.Equal(t, []string{"Popular"}, items[0].Badges)
	assert.Empty(t, ForLocation(items, "Banff"))
}
