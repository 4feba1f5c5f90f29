package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

func (r *GenreRepo) Create(ctx context.Context, g model.Genre) (model.Genre, error) {
	g.ID = uuid.NewString()
	g.Slug = strings.ToLower(g.Slug)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO genres (id, name, slug, description, icon) VALUES (?,?,?,?,?)",
		g.ID, g.Name, g.Slug, g.Description, g.Icon)
	if err != nil {
		if isDuplicate(err) {
			return model.Genre{}, ErrConflict
		}
		return model.Genre{}, err
	}
	return g, nil
}

func (r *GenreRepo) GetByID(ctx context.Context, id string) (model.Genre, error) {
	return r.getOne(ctx, "SELECT id, name, slug, description, icon FROM genres WHERE id=? LIMIT 1", id)
}

func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (model.Genre, error) {
	return r.getOne(ctx, "SELECT id, name, slug, description, icon FROM genres WHERE slug=? LIMIT 1", strings.ToLower(slug))
}

func (r *GenreRepo) getOne(ctx context.Context, query string, args ...any) (model.Genre, error) {
	var g model.Genre
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.Name, &g.Slug, &g.Description, &g.Icon)
	if err == sql.ErrNoRows {
		return model.Genre{}, ErrNotFound
	}
	return g, err
}

// List returns genres whose name or slug contains the search term, all
// genres when the term is empty.
func (r *GenreRepo) List(ctx context.Context, searchTerm string) ([]model.Genre, error) {
	term := "%" + strings.ToLower(searchTerm) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, slug, description, icon FROM genres WHERE LOWER(name) LIKE ? OR slug LIKE ? ORDER BY name",
		term, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.Description, &g.Icon); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GenreRepo) Update(ctx context.Context, g model.Genre) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE genres SET name=?, slug=?, description=?, icon=? WHERE id=?",
		g.Name, strings.ToLower(g.Slug), g.Description, g.Icon, g.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM genres WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CollectionRow backs the genre-collections view: each genre with one
// sample poster pulled from its most recently tagged movie.
type CollectionRow struct {
	Genre        model.Genre
	Poster       []byte
	PosterIV     []byte
	SampleMovies int
}

// Collections loads every genre together with a representative movie
// poster (still encrypted; projection decrypts it).
func (r *GenreRepo) Collections(ctx context.Context) ([]CollectionRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT g.id, g.name, g.slug, g.description, g.icon,
		       COALESCE(m.poster, _binary''), COALESCE(m.poster_iv, _binary''),
		       (SELECT COUNT(*) FROM video_genres vg2 WHERE vg2.genre_id = g.id)
		FROM genres g
		LEFT JOIN video_genres vg ON vg.genre_id = g.id
		LEFT JOIN movies m ON m.video_id = vg.video_id
		GROUP BY g.id, g.name, g.slug, g.description, g.icon, m.poster, m.poster_iv
		ORDER BY g.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollectionRow
	seen := map[string]bool{}
	for rows.Next() {
		var c CollectionRow
		if err := rows.Scan(&c.Genre.ID, &c.Genre.Name, &c.Genre.Slug, &c.Genre.Description, &c.Genre.Icon,
			&c.Poster, &c.PosterIV, &c.SampleMovies); err != nil {
			return nil, err
		}
		if seen[c.Genre.ID] {
			continue
		}
		seen[c.Genre.ID] = true
		out = append(out, c)
	}
	return out, rows.Err()
}
