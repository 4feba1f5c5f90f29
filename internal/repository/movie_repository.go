package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

// MovieRepo persists movies together with their owning video rows. Tag
// collections are delegated to VideoRepo.
type MovieRepo struct {
	DB     *sql.DB
	Videos *VideoRepo
}

func NewMovieRepo(db *sql.DB, videos *VideoRepo) *MovieRepo {
	return &MovieRepo{DB: db, Videos: videos}
}

// MovieRow pairs a movie with its video for projection.
type MovieRow struct {
	Movie model.Movie
	Video model.Video
}

const movieSelect = `
	SELECT m.id, m.video_id, m.title, m.slug, m.poster, m.poster_iv,
	       m.big_poster, m.big_poster_iv, m.need_subscribe, m.price, m.rating, m.count_opened,
	       v.id, v.video_url, v.video_url_iv, v.year, v.duration, v.type, v.is_notified,
	       COALESCE(v.season_id,''), v.episode_number
	FROM movies m
	JOIN videos v ON v.id = m.video_id`

func scanMovieRow(scan func(dest ...any) error) (MovieRow, error) {
	var row MovieRow
	err := scan(
		&row.Movie.ID, &row.Movie.VideoID, &row.Movie.Title, &row.Movie.Slug,
		&row.Movie.Poster, &row.Movie.PosterIV, &row.Movie.BigPoster, &row.Movie.BigPosterIV,
		&row.Movie.NeedSubscribe, &row.Movie.Price, &row.Movie.Rating, &row.Movie.CountOpened,
		&row.Video.ID, &row.Video.VideoURL, &row.Video.VideoURLIV, &row.Video.Year,
		&row.Video.Duration, &row.Video.Type, &row.Video.Notified,
		&row.Video.SeasonID, &row.Video.EpisodeNumber)
	return row, err
}

// Create inserts the video, the movie and all tag rows in one transaction.
// The returned id is the video id, which is what clients reference.
func (r *MovieRepo) Create(ctx context.Context, m model.Movie, v model.Video, genreIDs, countryIDs []string, crew []CrewInput) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	v.ID = NewVideoID()
	v.Type = model.TypeMovie
	if err := r.Videos.insertTx(ctx, tx, v); err != nil {
		return "", err
	}

	m.ID = uuid.NewString()
	m.VideoID = v.ID
	m.Slug = strings.ToLower(m.Slug)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO movies (id, video_id, title, slug, poster, poster_iv, big_poster, big_poster_iv, need_subscribe, price)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.ID, m.VideoID, m.Title, m.Slug, m.Poster, m.PosterIV, m.BigPoster, m.BigPosterIV,
		m.NeedSubscribe, m.Price); err != nil {
		if isDuplicate(err) {
			return "", ErrConflict
		}
		return "", err
	}

	if err := r.Videos.ReplaceGenres(ctx, tx, v.ID, genreIDs); err != nil {
		return "", err
	}
	if err := r.Videos.ReplaceCountries(ctx, tx, v.ID, countryIDs); err != nil {
		return "", err
	}
	if err := r.Videos.ReplaceCrew(ctx, tx, v.ID, crew); err != nil {
		return "", err
	}
	return v.ID, tx.Commit()
}

func (r *MovieRepo) GetBySlug(ctx context.Context, slug string) (MovieRow, error) {
	row, err := scanMovieRow(r.DB.QueryRowContext(ctx,
		movieSelect+" WHERE m.slug=? LIMIT 1", strings.ToLower(slug)).Scan)
	if err == sql.ErrNoRows {
		return MovieRow{}, ErrNotFound
	}
	return row, err
}

func (r *MovieRepo) GetByVideoID(ctx context.Context, videoID string) (MovieRow, error) {
	row, err := scanMovieRow(r.DB.QueryRowContext(ctx,
		movieSelect+" WHERE m.video_id=? LIMIT 1", videoID).Scan)
	if err == sql.ErrNoRows {
		return MovieRow{}, ErrNotFound
	}
	return row, err
}

// List returns movies whose title or slug contains the search term,
// ordered by rating descending.
func (r *MovieRepo) List(ctx context.Context, searchTerm string) ([]MovieRow, error) {
	term := "%" + strings.ToLower(searchTerm) + "%"
	return r.list(ctx,
		movieSelect+" WHERE LOWER(m.title) LIKE ? OR m.slug LIKE ? ORDER BY m.rating DESC",
		term, term)
}

// ByGenres returns movies tagged with any of the given genres.
func (r *MovieRepo) ByGenres(ctx context.Context, genreIDs []string) ([]MovieRow, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	query := movieSelect + ` WHERE m.video_id IN (
		SELECT vg.video_id FROM video_genres vg WHERE vg.genre_id IN (` + placeholders(len(genreIDs)) + `)
	) ORDER BY m.rating DESC`
	return r.list(ctx, query, toAny(genreIDs)...)
}

// ByPersons returns movies whose crew contains any of the given persons.
func (r *MovieRepo) ByPersons(ctx context.Context, personIDs []string) ([]MovieRow, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	query := movieSelect + ` WHERE m.video_id IN (
		SELECT cr.video_id FROM crews cr WHERE cr.person_id IN (` + placeholders(len(personIDs)) + `)
	) ORDER BY m.rating DESC`
	return r.list(ctx, query, toAny(personIDs)...)
}

// MostPopular returns opened movies ordered by view counter.
func (r *MovieRepo) MostPopular(ctx context.Context) ([]MovieRow, error) {
	return r.list(ctx, movieSelect+" WHERE m.count_opened > 0 ORDER BY m.count_opened DESC")
}

func (r *MovieRepo) list(ctx context.Context, query string, args ...any) ([]MovieRow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MovieRow
	for rows.Next() {
		row, err := scanMovieRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IncrementCountOpened bumps the view counter for a slug.
func (r *MovieRepo) IncrementCountOpened(ctx context.Context, slug string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE movies SET count_opened = count_opened + 1 WHERE slug=?", strings.ToLower(slug))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Update writes the merged movie and video rows plus any replaced tag
// sets in one transaction. Nil tag slices leave that set untouched.
func (r *MovieRepo) Update(ctx context.Context, row MovieRow, genreIDs, countryIDs []string, crew []CrewInput) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE movies SET title=?, slug=?, poster=?, poster_iv=?, big_poster=?, big_poster_iv=?,
		       need_subscribe=?, price=? WHERE id=?`,
		row.Movie.Title, strings.ToLower(row.Movie.Slug), row.Movie.Poster, row.Movie.PosterIV,
		row.Movie.BigPoster, row.Movie.BigPosterIV, row.Movie.NeedSubscribe, row.Movie.Price,
		row.Movie.ID); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE videos SET video_url=?, video_url_iv=?, year=?, duration=?, is_notified=? WHERE id=?",
		row.Video.VideoURL, row.Video.VideoURLIV, row.Video.Year, row.Video.Duration,
		row.Video.Notified, row.Video.ID); err != nil {
		return err
	}
	if genreIDs != nil {
		if err := r.Videos.ReplaceGenres(ctx, tx, row.Video.ID, genreIDs); err != nil {
			return err
		}
	}
	if countryIDs != nil {
		if err := r.Videos.ReplaceCountries(ctx, tx, row.Video.ID, countryIDs); err != nil {
			return err
		}
	}
	if crew != nil {
		if err := r.Videos.ReplaceCrew(ctx, tx, row.Video.ID, crew); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the owning video; the movie row and all join rows go
// with it through the schema's cascades.
func (r *MovieRepo) Delete(ctx context.Context, videoID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM videos WHERE id=? AND type=?", videoID, model.TypeMovie)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRating writes the recomputed aggregate onto the movie row.
func (r *MovieRepo) SetRating(ctx context.Context, videoID string, rating float64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE movies SET rating=? WHERE video_id=?", rating, videoID)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
