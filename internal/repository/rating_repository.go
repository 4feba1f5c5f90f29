package repository

import (
	"context"
	"database/sql"
)

// RatingRepo persists per-user ratings and computes the aggregates the
// rating service writes back onto movies and serials.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert writes the user's rating for a video, replacing any previous
// value.
func (r *RatingRepo) Upsert(ctx context.Context, userID, videoID string, value float64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ratings (user_id, video_id, value) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE value=VALUES(value)`,
		userID, videoID, value)
	return err
}

// ValueFor returns the user's rating for a video, or 0 with no error
// when the user has not rated it.
func (r *RatingRepo) ValueFor(ctx context.Context, userID, videoID string) (float64, error) {
	var v float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT value FROM ratings WHERE user_id=? AND video_id=?", userID, videoID).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// AverageForVideo returns the mean rating of one video, 0 when it has
// none.
func (r *RatingRepo) AverageForVideo(ctx context.Context, videoID string) (float64, error) {
	var avg float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(value),0) FROM ratings WHERE video_id=?", videoID).Scan(&avg)
	return avg, err
}

// AverageForSerial returns the mean rating across every episode of the
// serial, 0 when no episode has been rated.
func (r *RatingRepo) AverageForSerial(ctx context.Context, serialID string) (float64, error) {
	var avg float64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rt.value),0)
		FROM ratings rt
		JOIN videos v ON v.id = rt.video_id
		JOIN seasons s ON s.id = v.season_id
		WHERE s.serial_id=?`, serialID).Scan(&avg)
	return avg, err
}
