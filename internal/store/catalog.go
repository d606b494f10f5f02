package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const foodColumns = `id, name, price, image_url, section_id, created_at`

func scanFood(row pgx.Row) (Food, error) {
	var f Food
	err := row.Scan(&f.ID, &f.Name, &f.Price, &f.ImageURL, &f.SectionID, &f.CreatedAt)
	return f, err
}

// CreateFoodParams holds a new menu entry.
type CreateFoodParams struct {
	Name      string
	Price     pgtype.Numeric
	ImageURL  pgtype.Text
	SectionID pgtype.Int8
}

func (s *Store) CreateFood(ctx context.Context, arg CreateFoodParams) (Food, error) {
	const q = `
		INSERT INTO foods (name, price, image_url, section_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + foodColumns
	return scanFood(s.db.QueryRow(ctx, q, arg.Name, arg.Price, arg.ImageURL, arg.SectionID))
}

func (s *Store) ListFoods(ctx context.Context) ([]Food, error) {
	const q = `SELECT ` + foodColumns + ` FROM foods ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foods []Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

// UpdateFoodParams rewrites a menu entry.
type UpdateFoodParams struct {
	ID        int64
	Name      string
	Price     pgtype.Numeric
	ImageURL  pgtype.Text
	SectionID pgtype.Int8
}

func (s *Store) UpdateFood(ctx context.Context, arg UpdateFoodParams) (Food, error) {
	const q = `
		UPDATE foods
		SET name = $1, price = $2, image_url = $3, section_id = $4
		WHERE id = $5
		RETURNING ` + foodColumns
	return scanFood(s.db.QueryRow(ctx, q, arg.Name, arg.Price, arg.ImageURL, arg.SectionID, arg.ID))
}

func (s *Store) DeleteFood(ctx context.Context, id int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FoodPrice is the menu price snapshot row the revenue aggregator consults.
type FoodPrice struct {
	ID    int64
	Price pgtype.Numeric
}

// ListFoodPrices returns the current id -> price mapping for the whole menu.
func (s *Store) ListFoodPrices(ctx context.Context) ([]FoodPrice, error) {
	rows, err := s.db.Query(ctx, `SELECT id, price FROM foods`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []FoodPrice
	for rows.Next() {
		var p FoodPrice
		if err := rows.Scan(&p.ID, &p.Price); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// --- Sections ---

func (s *Store) CreateSection(ctx context.Context, name string) (Section, error) {
	var sec Section
	err := s.db.QueryRow(ctx,
		`INSERT INTO sections (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&sec.ID, &sec.Name)
	return sec, err
}

func (s *Store) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM sections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.Name); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *Store) DeleteSection(ctx context.Context, id int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
