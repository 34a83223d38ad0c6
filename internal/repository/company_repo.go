package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrCompanyReferenced means the FK from users.company_id blocked a
	// delete. Callers surface this distinctly so the UI can tell the
	// user to migrate or delete the users first.
	ErrCompanyReferenced = errors.New("company has users associated")
)

const fkViolation = "23503"

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetAll(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, latitude, longitude FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Latitude, &c.Longitude); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, latitude, longitude FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Latitude, &c.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Create(ctx context.Context, name, address string, coords *geo.Coordinates) (*models.Company, error) {
	c := models.Company{Name: name, Address: address}
	if coords != nil {
		c.Latitude = &coords.Latitude
		c.Longitude = &coords.Longitude
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO companies (name, address, latitude, longitude) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Address, c.Latitude, c.Longitude).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update overwrites all four columns. Matching the wire contract, a
// missing id is not reported: zero affected rows still succeeds.
func (r *CompanyRepository) Update(ctx context.Context, id int64, name, address string, coords *geo.Coordinates) error {
	var lat, lon *float64
	if coords != nil {
		lat = &coords.Latitude
		lon = &coords.Longitude
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = $1, address = $2, latitude = $3, longitude = $4 WHERE id = $5`,
		name, address, lat, lon, id)
	return err
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
			return ErrCompanyReferenced
		}
		return err
	}
	return nil
}
