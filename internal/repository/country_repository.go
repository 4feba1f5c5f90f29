package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

type CountryRepo struct{ DB *sql.DB }

func NewCountryRepo(db *sql.DB) *CountryRepo { return &CountryRepo{DB: db} }

func (r *CountryRepo) Create(ctx context.Context, c model.Country) (model.Country, error) {
	c.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO countries (id, name, group_id) VALUES (?,?,NULLIF(?,''))",
		c.ID, c.Name, c.GroupID)
	if err != nil {
		if isDuplicate(err) {
			return model.Country{}, ErrConflict
		}
		return model.Country{}, err
	}
	return c, nil
}

func (r *CountryRepo) GetByID(ctx context.Context, id string) (model.Country, error) {
	var c model.Country
	var group sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(group_id,'') FROM countries WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &group)
	if err == sql.ErrNoRows {
		return model.Country{}, ErrNotFound
	}
	c.GroupID = group.String
	return c, err
}

// List returns all countries grouped by their countries group name for the
// catalog browse view.
func (r *CountryRepo) List(ctx context.Context) ([]model.Country, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.group_id,'')
		FROM countries c
		LEFT JOIN countries_groups cg ON cg.id = c.group_id
		ORDER BY cg.name, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.GroupID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CountryRepo) Update(ctx context.Context, c model.Country) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE countries SET name=?, group_id=NULLIF(?,'') WHERE id=?",
		c.Name, c.GroupID, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *CountryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM countries WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureGroup returns the id of the named countries group, creating it on
// first use.
func (r *CountryRepo) EnsureGroup(ctx context.Context, name string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM countries_groups WHERE name=? LIMIT 1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO countries_groups (id, name) VALUES (?,?)", id, name); err != nil {
		return "", err
	}
	return id, nil
}
