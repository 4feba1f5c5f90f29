package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

func storedMovieRow() repository.MovieRow {
	return repository.MovieRow{
		Movie: model.Movie{
			ID: "movie-1", VideoID: "video-1", Title: "Inception", Slug: "inception",
			NeedSubscribe: true, Price: 9.99,
		},
		Video: model.Video{ID: "video-1", Type: model.TypeMovie, Year: 2010, Duration: 148},
	}
}

func TestApplyMovieUpdateAbsentFieldsKeepStoredValues(t *testing.T) {
	row := storedMovieRow()

	price := 4.99
	applyMovieUpdate(&row, movieUpdateReq{Price: &price})

	require.Equal(t, 4.99, row.Movie.Price)
	require.Equal(t, "Inception", row.Movie.Title)
	require.Equal(t, "inception", row.Movie.Slug)
	require.True(t, row.Movie.NeedSubscribe)
	require.Equal(t, 2010, row.Video.Year)
	require.Equal(t, 148, row.Video.Duration)
}

func TestApplyMovieUpdateMergesSubmittedFields(t *testing.T) {
	row := storedMovieRow()

	title := "Inception (Director's Cut)"
	slug := "Inception Directors Cut"
	free := false
	year := 2011
	applyMovieUpdate(&row, movieUpdateReq{
		Title: &title, Slug: &slug, NeedSubscribe: &free, Year: &year,
	})

	require.Equal(t, title, row.Movie.Title)
	require.Equal(t, "inception-directors-cut", row.Movie.Slug)
	require.False(t, row.Movie.NeedSubscribe)
	require.Equal(t, 2011, row.Video.Year)
	require.Equal(t, 9.99, row.Movie.Price)
	require.Equal(t, 148, row.Video.Duration)
}

func TestToCrewInputsKeepsNil(t *testing.T) {
	require.Nil(t, toCrewInputs(nil))

	out := toCrewInputs([]crewEntry{{PersonID: "p1", RoleID: "r1"}})
	require.Len(t, out, 1)
	require.Equal(t, "p1", out[0].PersonID)
}
