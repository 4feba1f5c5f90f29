package service

import (
	"github.com/streamapp/stream-platform/internal/crypt"
	"github.com/streamapp/stream-platform/internal/model"
	"github.com/streamapp/stream-platform/internal/repository"
)

// Projector turns storage rows into API views. Poster and photo fields
// are decrypted for everyone; the playable video URL is decrypted only
// when the caller passes grant=true, otherwise it stays null.
type Projector struct {
	Cipher *crypt.FieldCipher
}

func NewProjector(cipher *crypt.FieldCipher) *Projector {
	return &Projector{Cipher: cipher}
}

type GenreView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type CountryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CrewView struct {
	PersonID string `json:"personId"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Slug     string `json:"slug"`
	Photo    string `json:"photo,omitempty"`
	Role     string `json:"role"`
}

// MovieView is the public shape of a movie. ID is the video id, which
// is what rating, comment and purchase endpoints take.
type MovieView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Poster        string        `json:"poster"`
	BigPoster     string        `json:"bigPoster"`
	Year          int           `json:"year"`
	Duration      int           `json:"duration"`
	NeedSubscribe bool          `json:"needSubscribe"`
	Price         float64       `json:"price"`
	Rating        float64       `json:"rating"`
	CountOpened   int           `json:"countOpened"`
	VideoURL      *string       `json:"videoUrl"`
	Genres        []GenreView   `json:"genres,omitempty"`
	Countries     []CountryView `json:"countries,omitempty"`
	Crew          []CrewView    `json:"crew,omitempty"`
}

type SerialView struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Poster        string       `json:"poster"`
	BigPoster     string       `json:"bigPoster"`
	NeedSubscribe bool         `json:"needSubscribe"`
	Price         float64      `json:"price"`
	Rating        float64      `json:"rating"`
	CountOpened   int          `json:"countOpened"`
	Seasons       []SeasonView `json:"seasons,omitempty"`
}

type SeasonView struct {
	ID       string        `json:"id"`
	Number   int           `json:"number"`
	Episodes []EpisodeView `json:"episodes,omitempty"`
}

type EpisodeView struct {
	ID            string        `json:"id"`
	EpisodeNumber int           `json:"episodeNumber"`
	Year          int           `json:"year"`
	Duration      int           `json:"duration"`
	VideoURL      *string       `json:"videoUrl"`
	Genres        []GenreView   `json:"genres,omitempty"`
	Countries     []CountryView `json:"countries,omitempty"`
	Crew          []CrewView    `json:"crew,omitempty"`
}

func (p *Projector) decrypt(ciphertext, iv []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", nil
	}
	plain, err := p.Cipher.Decrypt(ciphertext, iv)
	if err != nil {
		return "", err
	}
	return plain, nil
}

// Movie projects a movie row. Tag slices may be nil for list views.
func (p *Projector) Movie(row repository.MovieRow, genres []model.Genre, countries []model.Country, crew []repository.CrewMember, grant bool) (MovieView, error) {
	poster, err := p.decrypt(row.Movie.Poster, row.Movie.PosterIV)
	if err != nil {
		return MovieView{}, err
	}
	bigPoster, err := p.decrypt(row.Movie.BigPoster, row.Movie.BigPosterIV)
	if err != nil {
		return MovieView{}, err
	}

	view := MovieView{
		ID:            row.Video.ID,
		Title:         row.Movie.Title,
		Slug:          row.Movie.Slug,
		Poster:        poster,
		BigPoster:     bigPoster,
		Year:          row.Video.Year,
		Duration:      row.Video.Duration,
		NeedSubscribe: row.Movie.NeedSubscribe,
		Price:         row.Movie.Price,
		Rating:        row.Movie.Rating,
		CountOpened:   row.Movie.CountOpened,
		Genres:        p.genres(genres),
		Countries:     p.countries(countries),
	}
	if view.Crew, err = p.crew(crew); err != nil {
		return MovieView{}, err
	}
	if grant {
		url, err := p.decrypt(row.Video.VideoURL, row.Video.VideoURLIV)
		if err != nil {
			return MovieView{}, err
		}
		view.VideoURL = &url
	}
	return view, nil
}

// Serial projects a serial row; seasons may be nil for list views.
func (p *Projector) Serial(s model.Serial, seasons []SeasonView) (SerialView, error) {
	poster, err := p.decrypt(s.Poster, s.PosterIV)
	if err != nil {
		return SerialView{}, err
	}
	bigPoster, err := p.decrypt(s.BigPoster, s.BigPosterIV)
	if err != nil {
		return SerialView{}, err
	}
	return SerialView{
		ID:            s.ID,
		Title:         s.Title,
		Slug:          s.Slug,
		Poster:        poster,
		BigPoster:     bigPoster,
		NeedSubscribe: s.NeedSubscribe,
		Price:         s.Price,
		Rating:        s.Rating,
		CountOpened:   s.CountOpened,
		Seasons:       seasons,
	}, nil
}

func (p *Projector) Season(s model.Season, episodes []EpisodeView) SeasonView {
	return SeasonView{ID: s.ID, Number: s.Number, Episodes: episodes}
}

// Episode projects an episode video. Tag slices may be nil.
func (p *Projector) Episode(v model.Video, genres []model.Genre, countries []model.Country, crew []repository.CrewMember, grant bool) (EpisodeView, error) {
	view := EpisodeView{
		ID:            v.ID,
		EpisodeNumber: v.EpisodeNumber,
		Year:          v.Year,
		Duration:      v.Duration,
		Genres:        p.genres(genres),
		Countries:     p.countries(countries),
	}
	var err error
	if view.Crew, err = p.crew(crew); err != nil {
		return EpisodeView{}, err
	}
	if grant {
		url, err := p.decrypt(v.VideoURL, v.VideoURLIV)
		if err != nil {
			return EpisodeView{}, err
		}
		view.VideoURL = &url
	}
	return view, nil
}

func (p *Projector) genres(genres []model.Genre) []GenreView {
	if len(genres) == 0 {
		return nil
	}
	out := make([]GenreView, 0, len(genres))
	for _, g := range genres {
		out = append(out, GenreView{ID: g.ID, Name: g.Name, Slug: g.Slug, Description: g.Description, Icon: g.Icon})
	}
	return out
}

func (p *Projector) countries(countries []model.Country) []CountryView {
	if len(countries) == 0 {
		return nil
	}
	out := make([]CountryView, 0, len(countries))
	for _, c := range countries {
		out = append(out, CountryView{ID: c.ID, Name: c.Name})
	}
	return out
}

func (p *Projector) crew(crew []repository.CrewMember) ([]CrewView, error) {
	if len(crew) == 0 {
		return nil, nil
	}
	out := make([]CrewView, 0, len(crew))
	for _, m := range crew {
		photo, err := p.decrypt(m.Person.Photo, m.Person.PhotoIV)
		if err != nil {
			return nil, err
		}
		out = append(out, CrewView{
			PersonID: m.Person.ID,
			Name:     m.Person.Name,
			Surname:  m.Person.Surname,
			Slug:     m.Person.Slug,
			Photo:    photo,
			Role:     m.Role,
		})
	}
	return out, nil
}
