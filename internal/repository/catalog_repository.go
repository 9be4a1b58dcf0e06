package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/thestylist/booking-api/internal/model"
)

// CatalogRepo reads the service catalog: categories and the services
// they contain. The booking core only consumes this data; nothing in
// the API writes it (catalog maintenance is an administrative task
// outside this service). Prices and durations are always read live,
// which is what keeps appointment totals in step with the current
// catalog.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListCategories returns all categories ordered by name.
func (r *CatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, description, slug FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.Slug); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			c.Description = &d
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategoryBySlug returns a single category. sql.ErrNoRows is
// returned when the slug does not exist.
func (r *CatalogRepo) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	slug = strings.TrimSpace(slug)
	var c model.Category
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, slug FROM categories WHERE slug=? LIMIT 1`,
		slug).Scan(&c.ID, &c.Name, &desc, &c.Slug)
	if err != nil {
		return model.Category{}, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	return c, nil
}

// ListServices returns every service, optionally restricted to one
// category when categoryID is non-zero. Ordered by name for stable
// output.
func (r *CatalogRepo) ListServices(ctx context.Context, categoryID uint64) ([]model.Service, error) {
	q := `SELECT id, category_id, name, description, price_cents, duration_min, slug FROM services`
	args := []interface{}{}
	if categoryID != 0 {
		q += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

// GetServicesByIDs loads the given services. The result may be shorter
// than the input when some IDs do not exist; callers compare lengths to
// detect unknown services. Duplicate IDs in the input are collapsed.
func (r *CatalogRepo) GetServicesByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	if len(ids) == 0 {
		return []model.Service{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT id, category_id, name, description, price_cents, duration_min, slug
	      FROM services WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func scanServices(rows *sql.Rows) ([]model.Service, error) {
	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &desc, &s.PriceCents, &s.DurationMin, &s.Slug); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			s.Description = &d
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
