package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

type PersonRepo struct{ DB *sql.DB }

func NewPersonRepo(db *sql.DB) *PersonRepo { return &PersonRepo{DB: db} }

const personColumns = "id, name, surname, patronymic, slug, photo, photo_iv"

func (r *PersonRepo) Create(ctx context.Context, p model.Person) (model.Person, error) {
	p.ID = uuid.NewString()
	p.Slug = strings.ToLower(p.Slug)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO persons (id, name, surname, patronymic, slug, photo, photo_iv) VALUES (?,?,?,?,?,?,?)",
		p.ID, p.Name, p.Surname, p.Patronymic, p.Slug, p.Photo, p.PhotoIV)
	if err != nil {
		if isDuplicate(err) {
			return model.Person{}, ErrConflict
		}
		return model.Person{}, err
	}
	return p, nil
}

func (r *PersonRepo) GetByID(ctx context.Context, id string) (model.Person, error) {
	return r.getOne(ctx, "SELECT "+personColumns+" FROM persons WHERE id=? LIMIT 1", id)
}

func (r *PersonRepo) GetBySlug(ctx context.Context, slug string) (model.Person, error) {
	return r.getOne(ctx, "SELECT "+personColumns+" FROM persons WHERE slug=? LIMIT 1", strings.ToLower(slug))
}

func (r *PersonRepo) getOne(ctx context.Context, query string, args ...any) (model.Person, error) {
	var p model.Person
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.Name, &p.Surname, &p.Patronymic, &p.Slug, &p.Photo, &p.PhotoIV)
	if err == sql.ErrNoRows {
		return model.Person{}, ErrNotFound
	}
	return p, err
}

// List returns persons matching the search term against name, surname or
// slug; all persons when the term is empty.
func (r *PersonRepo) List(ctx context.Context, searchTerm string) ([]model.Person, error) {
	term := "%" + strings.ToLower(searchTerm) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE LOWER(name) LIKE ? OR LOWER(surname) LIKE ? OR slug LIKE ? ORDER BY surname, name",
		term, term, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Surname, &p.Patronymic, &p.Slug, &p.Photo, &p.PhotoIV); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PersonRepo) Update(ctx context.Context, p model.Person) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE persons SET name=?, surname=?, patronymic=?, slug=?, photo=?, photo_iv=? WHERE id=?",
		p.Name, p.Surname, p.Patronymic, strings.ToLower(p.Slug), p.Photo, p.PhotoIV, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PersonRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM persons WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureRole returns the id of the named crew role, creating it on first
// use so imports can reference roles by name.
func (r *PersonRepo) EnsureRole(ctx context.Context, name string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx, "SELECT id FROM roles WHERE name=? LIMIT 1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, "INSERT INTO roles (id, name) VALUES (?,?)", id, name); err != nil {
		if isDuplicate(err) {
			// Lost a race with a concurrent insert; read the winner.
			qerr := r.DB.QueryRowContext(ctx, "SELECT id FROM roles WHERE name=? LIMIT 1", name).Scan(&id)
			return id, qerr
		}
		return "", err
	}
	return id, nil
}
