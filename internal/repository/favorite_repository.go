package repository

import (
	"context"
	"database/sql"
)

// FavoriteRepo persists the user's favorites list.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// Toggle adds the video to the user's favorites, or removes it when it
// is already there. Returns true when the video ends up favorited.
func (r *FavoriteRepo) Toggle(ctx context.Context, userID, videoID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id=? AND video_id=?", userID, videoID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorites (user_id, video_id) VALUES (?,?)", userID, videoID); err != nil {
		if isDuplicate(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IDs returns the video ids in the user's favorites list.
func (r *FavoriteRepo) IDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT video_id FROM favorites WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
