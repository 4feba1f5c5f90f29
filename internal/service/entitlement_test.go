package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/repository"
)

type fakeEntitlementStore struct {
	direct        bool
	orders        []repository.SubscriptionOrder
	genreCovers   []string
	countryCovers []string
	personCovers  []string

	directCalls   int
	coveringCalls int
}

func (f *fakeEntitlementStore) DirectPurchase(_ context.Context, _, _, _ string) (bool, error) {
	f.directCalls++
	return f.direct, nil
}

func (f *fakeEntitlementStore) SubscriptionOrders(_ context.Context, _ string) ([]repository.SubscriptionOrder, error) {
	return f.orders, nil
}

func (f *fakeEntitlementStore) SubscribesCoveringGenres(_ context.Context, _ string) ([]string, error) {
	f.coveringCalls++
	return f.genreCovers, nil
}

func (f *fakeEntitlementStore) SubscribesCoveringCountries(_ context.Context, _ string) ([]string, error) {
	f.coveringCalls++
	return f.countryCovers, nil
}

func (f *fakeEntitlementStore) SubscribesCoveringPersons(_ context.Context, _ string) ([]string, error) {
	f.coveringCalls++
	return f.personCovers, nil
}

func entitlementAt(store *fakeEntitlementStore, now time.Time) *Entitlement {
	e := NewEntitlement(store)
	e.Now = func() time.Time { return now }
	return e
}

func TestCanViewFreeContent(t *testing.T) {
	store := &fakeEntitlementStore{}
	e := entitlementAt(store, time.Now())

	ok, err := e.CanView(context.Background(), "", "vid-1", "", false)
	require.NoError(t, err)
	assert.True(t, ok, "free content is open to anonymous users")
	assert.Zero(t, store.directCalls, "no store queries for free content")
}

func TestCanViewAnonymousPaidContent(t *testing.T) {
	e := entitlementAt(&fakeEntitlementStore{direct: true}, time.Now())

	ok, err := e.CanView(context.Background(), "", "vid-1", "", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanViewDirectPurchase(t *testing.T) {
	store := &fakeEntitlementStore{direct: true}
	e := entitlementAt(store, time.Now())

	ok, err := e.CanView(context.Background(), "user-1", "vid-1", "", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, store.coveringCalls, "direct purchase short-circuits coverage queries")
}

func TestCanViewSubscriptionCoverage(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := repository.SubscriptionOrder{
		SubscribeID:    "sub-1",
		OrderDate:      now.AddDate(0, 0, -10),
		DurationMonths: 1,
	}

	tests := []struct {
		name  string
		store *fakeEntitlementStore
		want  bool
	}{
		{
			name: "genre coverage grants access",
			store: &fakeEntitlementStore{
				orders:      []repository.SubscriptionOrder{order},
				genreCovers: []string{"sub-1"},
			},
			want: true,
		},
		{
			name: "country coverage grants access",
			store: &fakeEntitlementStore{
				orders:        []repository.SubscriptionOrder{order},
				countryCovers: []string{"sub-1"},
			},
			want: true,
		},
		{
			name: "person coverage grants access",
			store: &fakeEntitlementStore{
				orders:       []repository.SubscriptionOrder{order},
				personCovers: []string{"sub-1"},
			},
			want: true,
		},
		{
			name: "covering plan the user never bought",
			store: &fakeEntitlementStore{
				orders:      []repository.SubscriptionOrder{order},
				genreCovers: []string{"sub-other"},
			},
			want: false,
		},
		{
			name: "active plan with no coverage",
			store: &fakeEntitlementStore{
				orders: []repository.SubscriptionOrder{order},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entitlementAt(tt.store, now)
			ok, err := e.CanView(context.Background(), "user-1", "vid-1", "", true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCanViewExpiredSubscription(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeEntitlementStore{
		orders: []repository.SubscriptionOrder{{
			SubscribeID:    "sub-1",
			OrderDate:      now.AddDate(0, -2, 0),
			DurationMonths: 1,
		}},
		genreCovers: []string{"sub-1"},
	}
	e := entitlementAt(store, now)

	ok, err := e.CanView(context.Background(), "user-1", "vid-1", "", true)
	require.NoError(t, err)
	assert.False(t, ok, "a lapsed subscription grants nothing")
	assert.Zero(t, store.coveringCalls, "no coverage queries without an active plan")
}

func TestCanViewSubscriptionBoundary(t *testing.T) {
	orderDate := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	store := func() *fakeEntitlementStore {
		return &fakeEntitlementStore{
			orders: []repository.SubscriptionOrder{{
				SubscribeID:    "sub-1",
				OrderDate:      orderDate,
				DurationMonths: 3,
			}},
			genreCovers: []string{"sub-1"},
		}
	}

	e := entitlementAt(store(), orderDate.AddDate(0, 3, 0).Add(-time.Second))
	ok, err := e.CanView(context.Background(), "user-1", "vid-1", "", true)
	require.NoError(t, err)
	assert.True(t, ok, "still active one second before expiry")

	e = entitlementAt(store(), orderDate.AddDate(0, 3, 0))
	ok, err = e.CanView(context.Background(), "user-1", "vid-1", "", true)
	require.NoError(t, err)
	assert.False(t, ok, "expired exactly at orderDate plus duration")
}

func TestCanViewSerialDirectPurchase(t *testing.T) {
	store := &fakeEntitlementStore{direct: true}
	e := entitlementAt(store, time.Now())

	ok, err := e.CanView(context.Background(), "user-1", "episode-vid", "serial-1", true)
	require.NoError(t, err)
	assert.True(t, ok)
}
