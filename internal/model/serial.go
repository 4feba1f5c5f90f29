package model

// Serial is the aggregate root for episodic content. It owns ordered
// seasons, each owning ordered episode videos. Rating is shared by every
// episode of the serial.
type Serial struct {
	ID            string  // serials.id
	Title         string  // serials.title
	Slug          string  // serials.slug
	Poster        []byte  // serials.poster
	PosterIV      []byte  // serials.poster_iv
	BigPoster     []byte  // serials.big_poster
	BigPosterIV   []byte  // serials.big_poster_iv
	NeedSubscribe bool    // serials.need_subscribe
	Price         float64 // serials.price
	Rating        float64 // serials.rating
	CountOpened   int     // serials.count_opened
}

// Season groups the episodes of a serial. Number is unique within the
// owning serial.
type Season struct {
	ID       string // seasons.id
	SerialID string // seasons.serial_id
	Number   int    // seasons.number
}
