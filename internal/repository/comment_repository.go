package repository

import (
	"context"
	"database/sql"

	"github.com/streamapp/stream-platform/internal/model"
)

// CommentRepo persists one comment per user per video.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentRow pairs a comment with the author's login for display.
type CommentRow struct {
	Comment model.Comment
	Login   string
}

// Upsert writes the user's comment on a video, replacing any previous
// one.
func (r *CommentRepo) Upsert(ctx context.Context, c model.Comment) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO comments (user_id, video_id, value) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE value=VALUES(value)`,
		c.UserID, c.VideoID, c.Value)
	return err
}

// ByVideo lists a video's comments with author logins.
func (r *CommentRepo) ByVideo(ctx context.Context, videoID string) ([]CommentRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.user_id, c.video_id, c.value, u.login
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.video_id=?`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommentRow
	for rows.Next() {
		var row CommentRow
		if err := rows.Scan(&row.Comment.UserID, &row.Comment.VideoID,
			&row.Comment.Value, &row.Login); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Delete removes the user's comment on a video.
func (r *CommentRepo) Delete(ctx context.Context, userID, videoID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE user_id=? AND video_id=?", userID, videoID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
