package catalog

import (
	"net/url"
	"strings"

	"github.com/vivispa/catalog-api/internal/model"
)

// Query string keys shared by the HTTP API and the CLI.
const (
	ParamSearch     = "search"
	ParamCategory   = "category"
	ParamLocation   = "location"
	ParamPriceRange = "priceRange"
	ParamSortBy     = "sortBy"
)

// EncodeCriteria renders c as a query string, omitting default values.
// The output is canonical: equal criteria always encode identically.
func EncodeCriteria(c model.Criteria) string {
	v := url.Values{}
	if term := strings.TrimSpace(c.Search); term != "" {
		v.Set(ParamSearch, term)
	}
	if active(c.Category) {
		v.Set(ParamCategory, c.Category)
	}
	if active(c.Location) {
		v.Set(ParamLocation, c.Location)
	}
	if active(c.PriceRange) {
		v.Set(ParamPriceRange, c.PriceRange)
	}
	if c.SortBy != model.SortNone {
		v.Set(ParamSortBy, string(c.SortBy))
	}
	return v.Encode()
}

// ParseCriteria reads criteria from query values; absent keys take defaults.
func ParseCriteria(v url.Values) model.Criteria {
	return model.Criteria{
		Search:     v.Get(ParamSearch),
		Category:   v.Get(ParamCategory),
		Location:   v.Get(ParamLocation),
		PriceRange: v.Get(ParamPriceRange),
		SortBy:     model.SortKey(v.Get(ParamSortBy)),
	}.Normalize()
}
