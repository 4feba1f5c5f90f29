package model

import "time"

// Subscribe is a purchasable plan. Its three tag sets (genres, countries,
// persons) define which videos it covers: sharing at least one tag on any
// dimension is enough. Duration is measured in months; an order of the plan
// is valid for [orderDate, orderDate + Duration months).
type Subscribe struct {
	ID          string  // subscribes.id
	Name        string  // subscribes.name
	Description string  // subscribes.description
	Price       float64 // subscribes.price
	Duration    int     // subscribes.duration (months)
}

// Order is an immutable purchase record. Exactly one of SubscribeID,
// SerialID, MovieID is set; MovieID references the movie's video id.
type Order struct {
	ID          string    // orders.id
	UserID      string    // orders.user_id
	Sum         float64   // orders.sum
	OrderDate   time.Time // orders.order_date
	SubscribeID string    // orders.subscribe_id (empty unless a plan purchase)
	SerialID    string    // orders.serial_id
	MovieID     string    // orders.movie_id
}
