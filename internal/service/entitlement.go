// Package service holds the domain logic that sits between the HTTP
// handlers and the repositories: access entitlement, rating
// aggregation and catalog projection.
package service

import (
	"context"
	"time"

	"github.com/streamapp/stream-platform/internal/repository"
)

// EntitlementStore answers the purchase and coverage queries the
// entitlement check needs. *repository.OrderRepo implements it.
type EntitlementStore interface {
	DirectPurchase(ctx context.Context, userID, videoID, serialID string) (bool, error)
	SubscriptionOrders(ctx context.Context, userID string) ([]repository.SubscriptionOrder, error)
	SubscribesCoveringGenres(ctx context.Context, videoID string) ([]string, error)
	SubscribesCoveringCountries(ctx context.Context, videoID string) ([]string, error)
	SubscribesCoveringPersons(ctx context.Context, videoID string) ([]string, error)
}

// Entitlement decides whether a user may watch a paid video. A video is
// watchable through a direct purchase of the movie or serial, or through
// any still-active subscription whose genre, country or person set
// touches the video.
type Entitlement struct {
	Store EntitlementStore
	Now   func() time.Time
}

func NewEntitlement(store EntitlementStore) *Entitlement {
	return &Entitlement{Store: store, Now: time.Now}
}

// CanView reports whether the user may watch the video. serialID is the
// owning serial for episodes and empty for movies. Content that does
// not require a subscription is open to everyone, including anonymous
// callers (empty userID).
func (e *Entitlement) CanView(ctx context.Context, userID, videoID, serialID string, needSubscribe bool) (bool, error) {
	if !needSubscribe {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}

	bought, err := e.Store.DirectPurchase(ctx, userID, videoID, serialID)
	if err != nil {
		return false, err
	}
	if bought {
		return true, nil
	}

	orders, err := e.Store.SubscriptionOrders(ctx, userID)
	if err != nil {
		return false, err
	}
	active := e.activeSubscribes(orders)
	if len(active) == 0 {
		return false, nil
	}

	for _, covering := range []func(context.Context, string) ([]string, error){
		e.Store.SubscribesCoveringGenres,
		e.Store.SubscribesCoveringCountries,
		e.Store.SubscribesCoveringPersons,
	} {
		ids, err := covering(ctx, videoID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if active[id] {
				return true, nil
			}
		}
	}
	return false, nil
}

// activeSubscribes filters the purchase history down to plans whose
// paid window still covers the current moment. A plan bought for N
// months is active until orderDate plus N months.
func (e *Entitlement) activeSubscribes(orders []repository.SubscriptionOrder) map[string]bool {
	now := e.Now()
	active := make(map[string]bool)
	for _, o := range orders {
		if now.Before(o.OrderDate.AddDate(0, o.DurationMonths, 0)) {
			active[o.SubscribeID] = true
		}
	}
	return active
}
