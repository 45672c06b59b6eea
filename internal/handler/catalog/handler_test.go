package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivispa/catalog-api/internal/middleware"
	"github.com/vivispa/catalog-api/internal/model"
	catalogService "github.com/vivispa/catalog-api/internal/service/catalog"
	"github.com/vivispa/catalog-api/pkg/metrics"
)

type stubRepo struct{}

func (stubRepo) Source() string { return "stub" }

func (stubRepo) Load(ctx context.Context) (*model.Snapshot, error) {
	return &model.Snapshot{
		Source: "stub",
		Catalogs: []*model.Catalog{
			{Name: "pricing", BucketSet: "standard", Items: []model.Item{
				{Name: "HydraFacial", Category: "Facial", Price: "$149", Location: "Downtown"},
				{Name: "Upper Lip", Category: "Laser Hair Removal", Subcategory: "Facial Areas", Price: "$49", Location: "Downtown"},
				{Name: "Full Legs", Category: "Laser Hair Removal", Subcategory: "Body Areas", Price: "$299", Location: "Edmonton Trail"},
			}},
			{Name: "offers", BucketSet: "standard", DefaultSort: model.SortHighestDiscount, Items: []model.Item{
				{Name: "Peel", Category: "Offers", Price: "$90", OriginalPrice: "$100", Location: "Downtown"},
				{Name: "Lift", Category: "Offers", Price: "$150", OriginalPrice: "$300", Locations: []model.Availability{
					{Location: "Edmonton Trail", URL: "https://book.example/e"},
				}},
			}},
		},
		BucketSets: map[string]model.BucketSet{
			"standard": {Name: "standard", Buckets: []model.PriceBucket{
				{Key: "under-100", Label: "Under $100", Max: ptr(100), MaxExclusive: true},
				{Key: "100-200", Label: "$100 - $200", Min: ptr(100), Max: ptr(200)},
			}},
		},
		Locations: []model.Location{{Name: "Downtown"}, {Name: "Edmonton Trail"}},
	}, nil
}

func ptr(f float64) *float64 { return &f }

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func setup(t *testing.T, load, admin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "catalog")
	svc := catalogService.NewService(stubRepo{}, m, catalogService.Config{})
	if load {
		_, err := svc.Reload(context.Background(), catalogService.TriggerStartup)
		require.NoError(t, err)
	}

	engine := gin.New()
	engine.Use(middleware.ErrorHandler(), middleware.Validation(middleware.DefaultValidationConfig()))
	api := engine.Group("/api/v1")
	h := NewHandler(svc, admin)
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api)
	return engine
}

func get(t *testing.T, engine *gin.Engine, method, target string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestListItems(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/items?category=Laser+Hair+Removal&sortBy=price-low-high")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	var res catalogService.QueryResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.Empty)
	assert.Equal(t, "Upper Lip", res.Items[0].Name)
	assert.Equal(t, "category=Laser+Hair+Removal&sortBy=price-low-high", res.Query)
}

func TestListItems_Empty(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/items?search=botox")
	require.Equal(t, http.StatusOK, code)

	var res catalogService.QueryResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Items)
}

func TestListItems_BadRequest(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/items?sortBy=random")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Len(t, env.Errors, 1)

	code, env = get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/items?priceRange=301%2B")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, `unknown price range "301+"`)

	code, _ = get(t, engine, http.MethodGet, "/api/v1/catalogs/menu/items")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotLoaded(t *testing.T) {
	engine := setup(t, false, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "catalogs not loaded", env.Message)
}

func TestListGroups(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/groups?location=Downtown")
	require.Equal(t, http.StatusOK, code)

	var res catalogService.GroupResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Facial", res.Groups[0].Category)
	assert.Equal(t, "Laser Hair Removal", res.Groups[1].Category)
	assert.True(t, res.Groups[1].HasSubcategories)
	assert.Equal(t, "Facial Areas", res.Groups[1].Subcategories[0].Key)
}

func TestListOptionsAndFilters(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/options/category")
	require.Equal(t, http.StatusOK, code)
	var values []string
	require.NoError(t, json.Unmarshal(env.Data, &values))
	assert.Equal(t, []string{"Facial", "Laser Hair Removal"}, values)

	code, _ = get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/options/name")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = get(t, engine, http.MethodGet, "/api/v1/catalogs/pricing/filters")
	require.Equal(t, http.StatusOK, code)
	var defs []model.FilterDefinition
	require.NoError(t, json.Unmarshal(env.Data, &defs))
	require.NotEmpty(t, defs)
	assert.Equal(t, model.FilterSearch, defs[0].Kind)
}

func TestListOffers(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/offers")
	require.Equal(t, http.StatusOK, code)
	var all catalogService.QueryResult
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Equal(t, 2, all.Count)
	assert.Equal(t, "Lift", all.Items[0].Name)

	code, env = get(t, engine, http.MethodGet, "/api/v1/offers?location=Edmonton+Trail")
	require.Equal(t, http.StatusOK, code)
	var trail catalogService.QueryResult
	require.NoError(t, json.Unmarshal(env.Data, &trail))
	require.Equal(t, 1, trail.Count)
	assert.Equal(t, "https://book.example/e", trail.Items[0].URL)
	assert.Equal(t, "Edmonton Trail", trail.Items[0].Location)
}

func TestListLocations(t *testing.T) {
	engine := setup(t, true, false)

	code, env := get(t, engine, http.MethodGet, "/api/v1/locations")
	require.Equal(t, http.StatusOK, code)
	var locs []model.Location
	require.NoError(t, json.Unmarshal(env.Data, &locs))
	assert.Len(t, locs, 2)
}

func TestReload(t *testing.T) {
	code, _ := get(t, setup(t, true, false), http.MethodPost, "/api/v1/admin/reload")
	assert.Equal(t, http.StatusNotFound, code, "admin routes are off by default")

	code, env := get(t, setup(t, true, true), http.MethodPost, "/api/v1/admin/reload")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "catalog reloaded", env.Message)

	var res reloadResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(2), res.Version)
	assert.Equal(t, 5, res.Items)
}
