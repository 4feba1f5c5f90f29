package model

import "time"

// User mirrors the 'users' table. Login, email and phone are each globally
// unique. The refresh token is persisted per user so a stolen pair cannot
// outlive an explicit re-issue.
type User struct {
	ID           string    // users.id
	Login        string    // users.login
	Email        string    // users.email
	Phone        string    // users.phone
	PasswordHash string    // users.password_hash (bcrypt, salt embedded)
	IsAdmin      bool      // users.is_admin
	RefreshToken string    // users.refresh_token
	TokenCreated time.Time // users.token_created
	TokenExpires time.Time // users.token_expires
	CreatedAt    time.Time // users.created_at
}

// Rating is one user's 0..10 score for one video.
type Rating struct {
	UserID  string  // ratings.user_id
	VideoID string  // ratings.video_id
	Value   float64 // ratings.value
}

// Comment is one user's comment on one video.
type Comment struct {
	UserID  string // comments.user_id
	VideoID string // comments.video_id
	Value   string // comments.value
}

// Favorite marks a video in a user's favorites list.
type Favorite struct {
	UserID  string // favorites.user_id
	VideoID string // favorites.video_id
}
