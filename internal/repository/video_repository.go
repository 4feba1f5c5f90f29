package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

// VideoRepo owns the videos table and the per-video tag collections
// (genres, countries, crew) shared by movies and serial episodes.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

const videoColumns = "id, video_url, video_url_iv, year, duration, type, is_notified, COALESCE(season_id,''), episode_number"

// CrewMember joins a crew row with its person and role name for display.
type CrewMember struct {
	Person model.Person
	Role   string
}

func scanVideo(scan func(dest ...any) error) (model.Video, error) {
	var v model.Video
	err := scan(&v.ID, &v.VideoURL, &v.VideoURLIV, &v.Year, &v.Duration, &v.Type,
		&v.Notified, &v.SeasonID, &v.EpisodeNumber)
	return v, err
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return model.Video{}, ErrNotFound
	}
	return v, err
}

// insertTx adds a video row inside an open transaction; movie and episode
// creation both go through here.
func (r *VideoRepo) insertTx(ctx context.Context, tx *sql.Tx, v model.Video) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO videos (id, video_url, video_url_iv, year, duration, type, is_notified, season_id, episode_number) VALUES (?,?,?,?,?,?,?,NULLIF(?,''),?)",
		v.ID, v.VideoURL, v.VideoURLIV, v.Year, v.Duration, v.Type, v.Notified, v.SeasonID, v.EpisodeNumber)
	return err
}

// MarkNotified flips the one-shot announcement latch after a successful
// channel post.
func (r *VideoRepo) MarkNotified(ctx context.Context, videoID string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE videos SET is_notified=1 WHERE id=?", videoID)
	return err
}

// GenresByVideo returns the genres tagged on a video.
func (r *VideoRepo) GenresByVideo(ctx context.Context, videoID string) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT g.id, g.name, g.slug, g.description, g.icon
		FROM video_genres vg
		JOIN genres g ON g.id = vg.genre_id
		WHERE vg.video_id = ?
		ORDER BY g.name`, videoID)
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

// CountriesByVideo returns the countries tagged on a video.
func (r *VideoRepo) CountriesByVideo(ctx context.Context, videoID string) ([]model.Country, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.group_id,'')
		FROM video_countries vc
		JOIN countries c ON c.id = vc.country_id
		WHERE vc.video_id = ?
		ORDER BY c.name`, videoID)
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

// CrewByVideo returns the video's crew with person details and role names.
func (r *VideoRepo) CrewByVideo(ctx context.Context, videoID string) ([]CrewMember, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.name, p.surname, p.patronymic, p.slug, p.photo, p.photo_iv, ro.name
		FROM crews cr
		JOIN persons p ON p.id = cr.person_id
		JOIN roles ro  ON ro.id = cr.role_id
		WHERE cr.video_id = ?
		ORDER BY ro.name, p.surname`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CrewMember
	for rows.Next() {
		var m CrewMember
		if err := rows.Scan(&m.Person.ID, &m.Person.Name, &m.Person.Surname, &m.Person.Patronymic,
			&m.Person.Slug, &m.Person.Photo, &m.Person.PhotoIV, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceGenres swaps the video's genre tags for the given set. The old
// rows are removed first so a partial update fully replaces the list.
func (r *VideoRepo) ReplaceGenres(ctx context.Context, tx *sql.Tx, videoID string, genreIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM video_genres WHERE video_id=?", videoID); err != nil {
		return err
	}
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO video_genres (video_id, genre_id) VALUES (?,?)", videoID, gid); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceCountries swaps the video's country tags for the given set.
func (r *VideoRepo) ReplaceCountries(ctx context.Context, tx *sql.Tx, videoID string, countryIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM video_countries WHERE video_id=?", videoID); err != nil {
		return err
	}
	for _, cid := range countryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO video_countries (video_id, country_id) VALUES (?,?)", videoID, cid); err != nil {
			return err
		}
	}
	return nil
}

// CrewInput names a person and their role for crew replacement.
type CrewInput struct {
	PersonID string
	RoleID   string
}

// ReplaceCrew swaps the video's crew for the given person/role pairs.
func (r *VideoRepo) ReplaceCrew(ctx context.Context, tx *sql.Tx, videoID string, crew []CrewInput) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM crews WHERE video_id=?", videoID); err != nil {
		return err
	}
	for _, c := range crew {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO crews (video_id, person_id, role_id) VALUES (?,?,?)",
			videoID, c.PersonID, c.RoleID); err != nil {
			return err
		}
	}
	return nil
}

// NewVideoID issues an id for a video created by a sibling repository.
func NewVideoID() string { return uuid.NewString() }
