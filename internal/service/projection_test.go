package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

func testProjector(t *testing.T) (*Projector, *crypt.FieldCipher) {
	t.Helper()
	cipher, err := crypt.New([]byte("projection-test-key"))
	require.NoError(t, err)
	return NewProjector(cipher), cipher
}

func encrypted(t *testing.T, cipher *crypt.FieldCipher, plain string) ([]byte, []byte) {
	t.Helper()
	ct, iv, err := cipher.Encrypt(plain)
	require.NoError(t, err)
	return ct, iv
}

func testMovieRow(t *testing.T, cipher *crypt.FieldCipher) repository.MovieRow {
	t.Helper()
	var row repository.MovieRow
	row.Movie = model.Movie{
		ID: "movie-1", VideoID: "vid-1", Title: "Solaris", Slug: "solaris",
		NeedSubscribe: true, Price: 4.99, Rating: 8.1, CountOpened: 12,
	}
	row.Movie.Poster, row.Movie.PosterIV = encrypted(t, cipher, "https://cdn/poster.jpg")
	row.Movie.BigPoster, row.Movie.BigPosterIV = encrypted(t, cipher, "https://cdn/big.jpg")
	row.Video = model.Video{ID: "vid-1", Year: 1972, Duration: 167, Type: model.TypeMovie}
	row.Video.VideoURL, row.Video.VideoURLIV = encrypted(t, cipher, "https://cdn/solaris.m3u8")
	return row
}

func TestMovieViewRedactsURLWithoutGrant(t *testing.T) {
	p, cipher := testProjector(t)
	row := testMovieRow(t, cipher)

	view, err := p.Movie(row, nil, nil, nil, false)
	require.NoError(t, err)

	assert.Nil(t, view.VideoURL, "url stays null without entitlement")
	assert.Equal(t, "https://cdn/poster.jpg", view.Poster, "posters decrypt for everyone")
	assert.Equal(t, "https://cdn/big.jpg", view.BigPoster)
	assert.Equal(t, "vid-1", view.ID, "view id is the video id")
}

func TestMovieViewDecryptsURLWithGrant(t *testing.T) {
	p, cipher := testProjector(t)
	row := testMovieRow(t, cipher)

	view, err := p.Movie(row, nil, nil, nil, true)
	require.NoError(t, err)

	require.NotNil(t, view.VideoURL)
	assert.Equal(t, "https://cdn/solaris.m3u8", *view.VideoURL)
}

func TestMovieViewCarriesTags(t *testing.T) {
	p, cipher := testProjector(t)
	row := testMovieRow(t, cipher)

	person := model.Person{ID: "p-1", Name: "Andrei", Surname: "Tarkovsky", Slug: "andrei-tarkovsky"}
	person.Photo, person.PhotoIV = encrypted(t, cipher, "https://cdn/tarkovsky.jpg")

	view, err := p.Movie(row,
		[]model.Genre{{ID: "g-1", Name: "Drama", Slug: "drama"}},
		[]model.Country{{ID: "c-1", Name: "USSR"}},
		[]repository.CrewMember{{Person: person, Role: "Director"}},
		false)
	require.NoError(t, err)

	require.Len(t, view.Genres, 1)
	assert.Equal(t, "drama", view.Genres[0].Slug)
	require.Len(t, view.Countries, 1)
	assert.Equal(t, "USSR", view.Countries[0].Name)
	require.Len(t, view.Crew, 1)
	assert.Equal(t, "Director", view.Crew[0].Role)
	assert.Equal(t, "https://cdn/tarkovsky.jpg", view.Crew[0].Photo, "crew photos decrypt for everyone")
}

func TestEpisodeViewRedaction(t *testing.T) {
	p, cipher := testProjector(t)
	v := model.Video{ID: "ep-1", Type: model.TypeSerial, SeasonID: "season-1", EpisodeNumber: 3, Year: 2020, Duration: 52}
	v.VideoURL, v.VideoURLIV = encrypted(t, cipher, "https://cdn/s01e03.m3u8")

	view, err := p.Episode(v, nil, nil, nil, false)
	require.NoError(t, err)
	assert.Nil(t, view.VideoURL)
	assert.Equal(t, 3, view.EpisodeNumber)

	view, err = p.Episode(v, nil, nil, nil, true)
	require.NoError(t, err)
	require.NotNil(t, view.VideoURL)
	assert.Equal(t, "https://cdn/s01e03.m3u8", *view.VideoURL)
}

func TestSerialViewWithSeasons(t *testing.T) {
	p, cipher := testProjector(t)
	s := model.Serial{ID: "serial-1", Title: "The Wire", Slug: "the-wire", Rating: 9.3}
	s.Poster, s.PosterIV = encrypted(t, cipher, "https://cdn/wire.jpg")

	season := p.Season(model.Season{ID: "season-1", SerialID: "serial-1", Number: 1},
		[]EpisodeView{{ID: "ep-1", EpisodeNumber: 1}})

	view, err := p.Serial(s, []SeasonView{season})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/wire.jpg", view.Poster)
	require.Len(t, view.Seasons, 1)
	assert.Equal(t, 1, view.Seasons[0].Number)
	require.Len(t, view.Seasons[0].Episodes, 1)
}

func TestViewsTolerateMissingArtwork(t *testing.T) {
	p, _ := testProjector(t)
	var row repository.MovieRow
	row.Movie = model.Movie{ID: "movie-1", Title: "No Art"}
	row.Video = model.Video{ID: "vid-1", Type: model.TypeMovie}

	view, err := p.Movie(row, nil, nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, view.Poster)
	assert.Nil(t, view.VideoURL)
}
