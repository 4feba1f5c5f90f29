package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

// OrderRepo persists purchases and answers the coverage queries the
// entitlement check is built on.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// SubscriptionOrder is one subscription purchase with the fields needed
// to decide whether it is still active.
type SubscriptionOrder struct {
	SubscribeID    string
	OrderDate      time.Time
	DurationMonths int
}

// Create inserts an order row. Exactly one of SubscribeID, SerialID and
// MovieID must be set; MovieID holds the purchased movie's video id.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) (string, error) {
	o.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, sum, order_date, subscribe_id, serial_id, movie_id)
		VALUES (?,?,?,?,NULLIF(?,''),NULLIF(?,''),NULLIF(?,''))`,
		o.ID, o.UserID, o.Sum, o.OrderDate, o.SubscribeID, o.SerialID, o.MovieID)
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

// ListByUser returns the user's purchase history, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, sum, order_date, COALESCE(subscribe_id,''), COALESCE(serial_id,''), COALESCE(movie_id,'')
		FROM orders WHERE user_id=? ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Sum, &o.OrderDate,
			&o.SubscribeID, &o.SerialID, &o.MovieID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DirectPurchase reports whether the user bought this video outright,
// either the movie itself or the serial an episode belongs to.
func (r *OrderRepo) DirectPurchase(ctx context.Context, userID, videoID, serialID string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE user_id=? AND (movie_id=? OR (serial_id IS NOT NULL AND serial_id=NULLIF(?,'')))`,
		userID, videoID, serialID).Scan(&n)
	return n > 0, err
}

// SubscriptionOrders returns every subscription purchase of the user
// joined with the plan's duration.
func (r *OrderRepo) SubscriptionOrders(ctx context.Context, userID string) ([]SubscriptionOrder, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT o.subscribe_id, o.order_date, s.duration
		FROM orders o
		JOIN subscribes s ON s.id = o.subscribe_id
		WHERE o.user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubscriptionOrder
	for rows.Next() {
		var so SubscriptionOrder
		if err := rows.Scan(&so.SubscribeID, &so.OrderDate, &so.DurationMonths); err != nil {
			return nil, err
		}
		out = append(out, so)
	}
	return out, rows.Err()
}

// SubscribesCoveringGenres returns ids of plans whose genre set
// intersects the video's genres.
func (r *OrderRepo) SubscribesCoveringGenres(ctx context.Context, videoID string) ([]string, error) {
	return r.coveringSubscribes(ctx, `
		SELECT DISTINCT sg.subscribe_id
		FROM subscribe_genres sg
		JOIN video_genres vg ON vg.genre_id = sg.genre_id
		WHERE vg.video_id=?`, videoID)
}

// SubscribesCoveringCountries returns ids of plans whose country set
// intersects the video's countries.
func (r *OrderRepo) SubscribesCoveringCountries(ctx context.Context, videoID string) ([]string, error) {
	return r.coveringSubscribes(ctx, `
		SELECT DISTINCT sc.subscribe_id
		FROM subscribe_countries sc
		JOIN video_countries vc ON vc.country_id = sc.country_id
		WHERE vc.video_id=?`, videoID)
}

// SubscribesCoveringPersons returns ids of plans whose person set
// intersects the video's crew.
func (r *OrderRepo) SubscribesCoveringPersons(ctx context.Context, videoID string) ([]string, error) {
	return r.coveringSubscribes(ctx, `
		SELECT DISTINCT sp.subscribe_id
		FROM subscribe_persons sp
		JOIN crews c ON c.person_id = sp.person_id
		WHERE c.video_id=?`, videoID)
}

func (r *OrderRepo) coveringSubscribes(ctx context.Context, query, videoID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, videoID)
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
