package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

// SerialRepo persists serials, their seasons and episode videos.
type SerialRepo struct {
	DB     *sql.DB
	Videos *VideoRepo
}

func NewSerialRepo(db *sql.DB, videos *VideoRepo) *SerialRepo {
	return &SerialRepo{DB: db, Videos: videos}
}

// EpisodeInput is one episode inside a season create request.
type EpisodeInput struct {
	Video      model.Video
	GenreIDs   []string
	CountryIDs []string
	Crew       []CrewInput
}

// SeasonInput is one season inside a serial create request.
type SeasonInput struct {
	Number   int
	Episodes []EpisodeInput
}

const serialColumns = `id, title, slug, poster, poster_iv, big_poster, big_poster_iv, need_subscribe, price, rating, count_opened`

func scanSerial(scan func(dest ...any) error) (model.Serial, error) {
	var s model.Serial
	err := scan(&s.ID, &s.Title, &s.Slug, &s.Poster, &s.PosterIV,
		&s.BigPoster, &s.BigPosterIV, &s.NeedSubscribe, &s.Price, &s.Rating, &s.CountOpened)
	return s, err
}

// Create inserts the serial and any nested seasons and episodes in one
// transaction. Returns the serial id.
func (r *SerialRepo) Create(ctx context.Context, s model.Serial, seasons []SeasonInput) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	s.ID = uuid.NewString()
	s.Slug = strings.ToLower(s.Slug)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO serials (id, title, slug, poster, poster_iv, big_poster, big_poster_iv, need_subscribe, price)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Title, s.Slug, s.Poster, s.PosterIV, s.BigPoster, s.BigPosterIV,
		s.NeedSubscribe, s.Price); err != nil {
		if isDuplicate(err) {
			return "", ErrConflict
		}
		return "", err
	}

	for _, season := range seasons {
		seasonID, err := r.insertSeasonTx(ctx, tx, s.ID, season.Number)
		if err != nil {
			return "", err
		}
		for _, ep := range season.Episodes {
			if _, err := r.insertEpisodeTx(ctx, tx, seasonID, ep); err != nil {
				return "", err
			}
		}
	}
	return s.ID, tx.Commit()
}

func (r *SerialRepo) GetByID(ctx context.Context, id string) (model.Serial, error) {
	s, err := scanSerial(r.DB.QueryRowContext(ctx,
		"SELECT "+serialColumns+" FROM serials WHERE id=?", id).Scan)
	if err == sql.ErrNoRows {
		return model.Serial{}, ErrNotFound
	}
	return s, err
}

func (r *SerialRepo) GetBySlug(ctx context.Context, slug string) (model.Serial, error) {
	s, err := scanSerial(r.DB.QueryRowContext(ctx,
		"SELECT "+serialColumns+" FROM serials WHERE slug=?", strings.ToLower(slug)).Scan)
	if err == sql.ErrNoRows {
		return model.Serial{}, ErrNotFound
	}
	return s, err
}

// List returns serials whose title or slug contains the search term,
// ordered by rating descending.
func (r *SerialRepo) List(ctx context.Context, searchTerm string) ([]model.Serial, error) {
	term := "%" + strings.ToLower(searchTerm) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+serialColumns+" FROM serials WHERE LOWER(title) LIKE ? OR slug LIKE ? ORDER BY rating DESC",
		term, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Serial
	for rows.Next() {
		s, err := scanSerial(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update writes the merged serial row.
func (r *SerialRepo) Update(ctx context.Context, s model.Serial) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE serials SET title=?, slug=?, poster=?, poster_iv=?, big_poster=?, big_poster_iv=?,
		       need_subscribe=?, price=? WHERE id=?`,
		s.Title, strings.ToLower(s.Slug), s.Poster, s.PosterIV, s.BigPoster, s.BigPosterIV,
		s.NeedSubscribe, s.Price, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	// The driver reports changed rows, so an identical update affects
	// zero; re-check existence before calling it a miss.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the serial; seasons and episode videos cascade.
func (r *SerialRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM serials WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCountOpened bumps the view counter for a slug.
func (r *SerialRepo) IncrementCountOpened(ctx context.Context, slug string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE serials SET count_opened = count_opened + 1 WHERE slug=?", strings.ToLower(slug))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRating writes the recomputed serial-wide aggregate.
func (r *SerialRepo) SetRating(ctx context.Context, serialID string, rating float64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE serials SET rating=? WHERE id=?", rating, serialID)
	return err
}

// Seasons

func (r *SerialRepo) insertSeasonTx(ctx context.Context, tx *sql.Tx, serialID string, number int) (string, error) {
	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO seasons (id, serial_id, number) VALUES (?,?,?)",
		id, serialID, number); err != nil {
		if isDuplicate(err) {
			return "", ErrConflict
		}
		return "", err
	}
	return id, nil
}

// CreateSeason adds a season to an existing serial, with any nested
// episodes, in one transaction.
func (r *SerialRepo) CreateSeason(ctx context.Context, serialID string, number int, episodes []EpisodeInput) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	seasonID, err := r.insertSeasonTx(ctx, tx, serialID, number)
	if err != nil {
		return "", err
	}
	for _, ep := range episodes {
		if _, err := r.insertEpisodeTx(ctx, tx, seasonID, ep); err != nil {
			return "", err
		}
	}
	return seasonID, tx.Commit()
}

func (r *SerialRepo) GetSeason(ctx context.Context, id string) (model.Season, error) {
	var s model.Season
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, serial_id, number FROM seasons WHERE id=?", id).
		Scan(&s.ID, &s.SerialID, &s.Number)
	if err == sql.ErrNoRows {
		return model.Season{}, ErrNotFound
	}
	return s, err
}

// SeasonBySerialSlug resolves a season by the serial's slug and the
// season number.
func (r *SerialRepo) SeasonBySerialSlug(ctx context.Context, slug string, number int) (model.Season, error) {
	var s model.Season
	err := r.DB.QueryRowContext(ctx, `
		SELECT s.id, s.serial_id, s.number FROM seasons s
		JOIN serials sr ON sr.id = s.serial_id
		WHERE sr.slug=? AND s.number=?`, strings.ToLower(slug), number).
		Scan(&s.ID, &s.SerialID, &s.Number)
	if err == sql.ErrNoRows {
		return model.Season{}, ErrNotFound
	}
	return s, err
}

func (r *SerialRepo) SeasonsBySerial(ctx context.Context, serialID string) ([]model.Season, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, serial_id, number FROM seasons WHERE serial_id=? ORDER BY number", serialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Season
	for rows.Next() {
		var s model.Season
		if err := rows.Scan(&s.ID, &s.SerialID, &s.Number); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SerialRepo) UpdateSeason(ctx context.Context, s model.Season) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE seasons SET number=? WHERE id=?", s.Number, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	// Changed-rows semantics: an unchanged number affects zero rows.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetSeason(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSeason removes the season; episode videos cascade.
func (r *SerialRepo) DeleteSeason(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM seasons WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Episodes

func (r *SerialRepo) insertEpisodeTx(ctx context.Context, tx *sql.Tx, seasonID string, ep EpisodeInput) (string, error) {
	v := ep.Video
	v.ID = NewVideoID()
	v.Type = model.TypeSerial
	v.SeasonID = seasonID
	if err := r.Videos.insertTx(ctx, tx, v); err != nil {
		return "", err
	}
	if err := r.Videos.ReplaceGenres(ctx, tx, v.ID, ep.GenreIDs); err != nil {
		return "", err
	}
	if err := r.Videos.ReplaceCountries(ctx, tx, v.ID, ep.CountryIDs); err != nil {
		return "", err
	}
	if err := r.Videos.ReplaceCrew(ctx, tx, v.ID, ep.Crew); err != nil {
		return "", err
	}
	return v.ID, nil
}

// CreateEpisode adds a single episode to an existing season.
func (r *SerialRepo) CreateEpisode(ctx context.Context, seasonID string, ep EpisodeInput) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := r.insertEpisodeTx(ctx, tx, seasonID, ep)
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

func (r *SerialRepo) EpisodesBySeason(ctx context.Context, seasonID string) ([]model.Video, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE season_id=? ORDER BY episode_number", seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Video
	for rows.Next() {
		v, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateEpisode writes the merged episode video row plus any replaced
// tag sets. Nil tag slices leave that set untouched.
func (r *SerialRepo) UpdateEpisode(ctx context.Context, v model.Video, genreIDs, countryIDs []string, crew []CrewInput) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE videos SET video_url=?, video_url_iv=?, year=?, duration=?, is_notified=?, episode_number=?
		WHERE id=? AND type=?`,
		v.VideoURL, v.VideoURLIV, v.Year, v.Duration, v.Notified, v.EpisodeNumber,
		v.ID, model.TypeSerial)
	if err != nil {
		return err
	}
	// Changed-rows semantics: re-check existence on a zero count.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM videos WHERE id=? AND type=?", v.ID, model.TypeSerial).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
	}
	if genreIDs != nil {
		if err := r.Videos.ReplaceGenres(ctx, tx, v.ID, genreIDs); err != nil {
			return err
		}
	}
	if countryIDs != nil {
		if err := r.Videos.ReplaceCountries(ctx, tx, v.ID, countryIDs); err != nil {
			return err
		}
	}
	if crew != nil {
		if err := r.Videos.ReplaceCrew(ctx, tx, v.ID, crew); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SerialRepo) DeleteEpisode(ctx context.Context, videoID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM videos WHERE id=? AND type=?", videoID, model.TypeSerial)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SerialForVideo resolves the owning serial of an episode video.
func (r *SerialRepo) SerialForVideo(ctx context.Context, videoID string) (model.Serial, error) {
	s, err := scanSerial(r.DB.QueryRowContext(ctx, `
		SELECT sr.id, sr.title, sr.slug, sr.poster, sr.poster_iv, sr.big_poster, sr.big_poster_iv,
		       sr.need_subscribe, sr.price, sr.rating, sr.count_opened
		FROM serials sr
		JOIN seasons s ON s.serial_id = sr.id
		JOIN videos v ON v.season_id = s.id
		WHERE v.id=?`, videoID).Scan)
	if err == sql.ErrNoRows {
		return model.Serial{}, ErrNotFound
	}
	return s, err
}
