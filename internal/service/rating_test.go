package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/model"
)

type fakeRatingStore struct {
	values     map[string]float64 // userID+videoID -> value
	videoAvg   float64
	serialAvg  float64
	serialArgs []string
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{values: map[string]float64{}}
}

func (f *fakeRatingStore) Upsert(_ context.Context, userID, videoID string, value float64) error {
	f.values[userID+"/"+videoID] = value
	return nil
}

func (f *fakeRatingStore) ValueFor(_ context.Context, userID, videoID string) (float64, error) {
	return f.values[userID+"/"+videoID], nil
}

func (f *fakeRatingStore) AverageForVideo(_ context.Context, _ string) (float64, error) {
	return f.videoAvg, nil
}

func (f *fakeRatingStore) AverageForSerial(_ context.Context, serialID string) (float64, error) {
	f.serialArgs = append(f.serialArgs, serialID)
	return f.serialAvg, nil
}

type fakeVideoGetter struct{ video model.Video }

func (f *fakeVideoGetter) GetByID(_ context.Context, _ string) (model.Video, error) {
	return f.video, nil
}

type fakeMovieWriter struct {
	videoID string
	rating  float64
}

func (f *fakeMovieWriter) SetRating(_ context.Context, videoID string, rating float64) error {
	f.videoID, f.rating = videoID, rating
	return nil
}

type fakeSerialWriter struct {
	serial   model.Serial
	serialID string
	rating   float64
	written  bool
}

func (f *fakeSerialWriter) SerialForVideo(_ context.Context, _ string) (model.Serial, error) {
	return f.serial, nil
}

func (f *fakeSerialWriter) SetRating(_ context.Context, serialID string, rating float64) error {
	f.serialID, f.rating, f.written = serialID, rating, true
	return nil
}

func TestRateMovie(t *testing.T) {
	store := newFakeRatingStore()
	store.videoAvg = 7.5
	movies := &fakeMovieWriter{}
	serials := &fakeSerialWriter{}
	rater := NewRater(store, &fakeVideoGetter{video: model.Video{ID: "vid-1", Type: model.TypeMovie}}, movies, serials)

	avg, err := rater.Rate(context.Background(), "user-1", "vid-1", 8)
	require.NoError(t, err)

	assert.Equal(t, 7.5, avg)
	assert.Equal(t, 8.0, store.values["user-1/vid-1"])
	assert.Equal(t, "vid-1", movies.videoID)
	assert.Equal(t, 7.5, movies.rating)
	assert.False(t, serials.written, "movie rating must not touch serials")
}

func TestRateEpisodeAveragesWholeSerial(t *testing.T) {
	store := newFakeRatingStore()
	store.serialAvg = 6.25
	serials := &fakeSerialWriter{serial: model.Serial{ID: "serial-1"}}
	rater := NewRater(store, &fakeVideoGetter{video: model.Video{ID: "ep-3", Type: model.TypeSerial, SeasonID: "season-1"}}, &fakeMovieWriter{}, serials)

	avg, err := rater.Rate(context.Background(), "user-1", "ep-3", 9)
	require.NoError(t, err)

	assert.Equal(t, 6.25, avg)
	assert.Equal(t, []string{"serial-1"}, store.serialArgs, "aggregate spans the owning serial")
	assert.Equal(t, "serial-1", serials.serialID)
	assert.Equal(t, 6.25, serials.rating)
}

func TestRateRevisionReplacesValue(t *testing.T) {
	store := newFakeRatingStore()
	rater := NewRater(store, &fakeVideoGetter{video: model.Video{ID: "vid-1", Type: model.TypeMovie}}, &fakeMovieWriter{}, &fakeSerialWriter{})

	_, err := rater.Rate(context.Background(), "user-1", "vid-1", 3)
	require.NoError(t, err)
	_, err = rater.Rate(context.Background(), "user-1", "vid-1", 9)
	require.NoError(t, err)

	assert.Equal(t, 9.0, store.values["user-1/vid-1"], "second rating replaces the first")
}

func TestRateRejectsOutOfRange(t *testing.T) {
	rater := NewRater(newFakeRatingStore(), &fakeVideoGetter{}, &fakeMovieWriter{}, &fakeSerialWriter{})

	for _, value := range []float64{-1, 10.5, 42} {
		_, err := rater.Rate(context.Background(), "user-1", "vid-1", value)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}
