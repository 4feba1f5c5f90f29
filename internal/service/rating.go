package service

import (
	"context"

	"github.com/streamapp/stream-platform/internal/apperr"
	"github.com/streamapp/stream-platform/internal/model"
)

// RatingStore is the slice of the rating repository the aggregator
// needs.
type RatingStore interface {
	Upsert(ctx context.Context, userID, videoID string, value float64) error
	ValueFor(ctx context.Context, userID, videoID string) (float64, error)
	AverageForVideo(ctx context.Context, videoID string) (float64, error)
	AverageForSerial(ctx context.Context, serialID string) (float64, error)
}

// VideoGetter resolves a video row by id.
type VideoGetter interface {
	GetByID(ctx context.Context, id string) (model.Video, error)
}

// MovieRatingWriter writes the aggregate back onto a movie row.
type MovieRatingWriter interface {
	SetRating(ctx context.Context, videoID string, rating float64) error
}

// SerialRatingWriter resolves an episode's serial and writes the
// serial-wide aggregate back.
type SerialRatingWriter interface {
	SerialForVideo(ctx context.Context, videoID string) (model.Serial, error)
	SetRating(ctx context.Context, serialID string, rating float64) error
}

// Rater records per-user ratings and keeps the denormalized aggregate
// on movies and serials current. Rating an episode re-averages across
// every episode of the owning serial, not just the rated one.
type Rater struct {
	Ratings RatingStore
	Videos  VideoGetter
	Movies  MovieRatingWriter
	Serials SerialRatingWriter
}

func NewRater(ratings RatingStore, videos VideoGetter, movies MovieRatingWriter, serials SerialRatingWriter) *Rater {
	return &Rater{Ratings: ratings, Videos: videos, Movies: movies, Serials: serials}
}

// Rate stores the user's value for the video and returns the recomputed
// aggregate for the movie or serial it belongs to.
func (r *Rater) Rate(ctx context.Context, userID, videoID string, value float64) (float64, error) {
	if value < 0 || value > 10 {
		return 0, apperr.Validation("value", "rating must be between 0 and 10")
	}

	v, err := r.Videos.GetByID(ctx, videoID)
	if err != nil {
		return 0, err
	}
	if err := r.Ratings.Upsert(ctx, userID, videoID, value); err != nil {
		return 0, err
	}

	if v.Type == model.TypeMovie {
		avg, err := r.Ratings.AverageForVideo(ctx, videoID)
		if err != nil {
			return 0, err
		}
		if err := r.Movies.SetRating(ctx, videoID, avg); err != nil {
			return 0, err
		}
		return avg, nil
	}

	serial, err := r.Serials.SerialForVideo(ctx, videoID)
	if err != nil {
		return 0, err
	}
	avg, err := r.Ratings.AverageForSerial(ctx, serial.ID)
	if err != nil {
		return 0, err
	}
	if err := r.Serials.SetRating(ctx, serial.ID, avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// ValueFor returns the user's stored rating for a video, 0 when the
// user has not rated it.
func (r *Rater) ValueFor(ctx context.Context, userID, videoID string) (float64, error) {
	return r.Ratings.ValueFor(ctx, userID, videoID)
}
