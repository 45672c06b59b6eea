package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/internal/repository"
	"github.com/vivispa/catalog-api/pkg/validator"
)

// Schema creates the catalog tables when they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS catalogs (
	name          TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	bucket_set    TEXT NOT NULL DEFAULT '',
	search_fields TEXT[] NOT NULL DEFAULT '{}',
	default_sort  TEXT NOT NULL DEFAULT '',
	position      INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS catalog_items (
	id             BIGSERIAL PRIMARY KEY,
	catalog        TEXT NOT NULL REFERENCES catalogs(name) ON DELETE CASCADE,
	item_id        TEXT NOT NULL DEFAULT '',
	slug           TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	subcategory    TEXT NOT NULL DEFAULT '',
	price          TEXT NOT NULL DEFAULT '',
	original_price TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	url            TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	badges         TEXT[] NOT NULL DEFAULT '{}',
	tags           TEXT[] NOT NULL DEFAULT '{}',
	position       INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS item_locations (
	catalog_item_id BIGINT NOT NULL REFERENCES catalog_items(id) ON DELETE CASCADE,
	location        TEXT NOT NULL,
	url             TEXT NOT NULL DEFAULT '',
	badges          TEXT[] NOT NULL DEFAULT '{}',
	position        INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS locations (
	name        TEXT PRIMARY KEY,
	address     TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	booking_url TEXT NOT NULL DEFAULT '',
	hours       JSONB NOT NULL DEFAULT '[]',
	position    INT NOT NULL DEFAULT 0
);
`

const (
	selectCatalogs = `
		SELECT name, title, bucket_set, search_fields, default_sort
		FROM catalogs
		ORDER BY position, name`

	selectItems = `
		SELECT id, catalog, item_id, slug, name, category, subcategory, price,
			original_price, location, url, description, badges, tags
		FROM catalog_items
		ORDER BY catalog, position, id`

	selectAvailability = `
		SELECT catalog_item_id, location, url, badges
		FROM item_locations
		ORDER BY catalog_item_id, position`

	selectLocations = `
		SELECT name, address, phone, email, booking_url, hours
		FROM locations
		ORDER BY position, name`
)

type catalogRow struct {
	Name         string         `db:"name"`
	Title        string         `db:"title"`
	BucketSet    string         `db:"bucket_set"`
	SearchFields pq.StringArray `db:"search_fields"`
	DefaultSort  string         `db:"default_sort"`
}

type itemRow struct {
	ID            int64          `db:"id"`
	Catalog       string         `db:"catalog"`
	ItemID        string         `db:"item_id"`
	Slug          string         `db:"slug"`
	Name          string         `db:"name"`
	Category      string         `db:"category"`
	Subcategory   string         `db:"subcategory"`
	Price         string         `db:"price"`
	OriginalPrice string         `db:"original_price"`
	Location      string         `db:"location"`
	URL           string         `db:"url"`
	Description   string         `db:"description"`
	Badges        pq.StringArray `db:"badges"`
	Tags          pq.StringArray `db:"tags"`
}

type availabilityRow struct {
	ItemID   int64          `db:"catalog_item_id"`
	Location string         `db:"location"`
	URL      string         `db:"url"`
	Badges   pq.StringArray `db:"badges"`
}

type locationRow struct {
	Name       string `db:"name"`
	Address    string `db:"address"`
	Phone      string `db:"phone"`
	Email      string `db:"email"`
	BookingURL string `db:"booking_url"`
	Hours      []byte `db:"hours"`
}

type rows struct {
	catalogs     []catalogRow
	items        []itemRow
	availability []availabilityRow
	locations    []locationRow
}

// CatalogRepository loads catalogs from PostgreSQL.
type CatalogRepository struct {
	BaseRepository
	validator validator.Validator
}

func NewCatalogRepository(base BaseRepository, v validator.Validator) *CatalogRepository {
	return &CatalogRepository{BaseRepository: base, validator: v}
}

func (r *CatalogRepository) Source() string {
	return "postgres"
}

// EnsureSchema creates missing tables.
func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

func (r *CatalogRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	var rs rows
	err := r.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &rs.catalogs, selectCatalogs); err != nil {
			return fmt.Errorf("failed to list catalogs: %w", err)
		}
		if err := tx.SelectContext(ctx, &rs.items, selectItems); err != nil {
			return fmt.Errorf("failed to list catalog items: %w", err)
		}
		if err := tx.SelectContext(ctx, &rs.availability, selectAvailability); err != nil {
			return fmt.Errorf("failed to list item locations: %w", err)
		}
		if err := tx.SelectContext(ctx, &rs.locations, selectLocations); err != nil {
			return fmt.Errorf("failed to list locations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := assemble(rs)
	if err != nil {
		return nil, err
	}
	return repository.BuildSnapshot(doc, r.Source(), r.validator)
}

// assemble joins loaded rows into a document. Items whose catalog is not
// listed are rejected rather than dropped.
func assemble(rs rows) (repository.Document, error) {
	doc := repository.Document{
		Catalogs:  make([]*model.Catalog, 0, len(rs.catalogs)),
		Locations: make([]model.Location, 0, len(rs.locations)),
	}

	byName := make(map[string]*model.Catalog, len(rs.catalogs))
	for _, c := range rs.catalogs {
		cat := &model.Catalog{
			Name:         c.Name,
			Title:        c.Title,
			BucketSet:    c.BucketSet,
			SearchFields: []string(c.SearchFields),
			DefaultSort:  model.SortKey(c.DefaultSort),
			Items:        []model.Item{},
		}
		byName[c.Name] = cat
		doc.Catalogs = append(doc.Catalogs, cat)
	}

	avail := make(map[int64][]model.Availability)
	for _, a := range rs.availability {
		avail[a.ItemID] = append(avail[a.ItemID], model.Availability{
			Location: a.Location,
			URL:      a.URL,
			Badges:   stringSlice(a.Badges),
		})
	}

	for _, it := range rs.items {
		cat, ok := byName[it.Catalog]
		if !ok {
			return doc, fmt.Errorf("item %d references unknown catalog %q", it.ID, it.Catalog)
		}
		cat.Items = append(cat.Items, model.Item{
			ID:            it.ItemID,
			Slug:          it.Slug,
			Name:          it.Name,
			Category:      it.Category,
			Subcategory:   it.Subcategory,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
			Location:      it.Location,
			Locations:     avail[it.ID],
			URL:           it.URL,
			Description:   it.Description,
			Badges:        stringSlice(it.Badges),
			Tags:          stringSlice(it.Tags),
		})
	}

	for _, l := range rs.locations {
		loc := model.Location{
			Name:    l.Name,
			Address: l.Address,
			Phone:   l.Phone,
			Email:   l.Email,
			Booking: l.BookingURL,
		}
		if len(l.Hours) > 0 {
			if err := json.Unmarshal(l.Hours, &loc.Hours); err != nil {
				return doc, fmt.Errorf("failed to decode hours of %q: %w", l.Name, err)
			}
		}
		doc.Locations = append(doc.Locations, loc)
	}

	return doc, nil
}

// stringSlice turns an empty array into nil so items compare equal to file loads.
func stringSlice(a pq.StringArray) []string {
	if len(a) == 0 {
		return nil
	}
	return []string(a)
}
