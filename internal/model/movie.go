package model

// Movie is the 1:1 companion of a MOVIE-type video. Poster URLs are stored
// encrypted alongside their IVs, same scheme as the video URL.
//
// Fields:
//  ID            – primary key (movies.id).
//  VideoID       – owning video (movies.video_id, unique).
//  Title         – display title.
//  Slug          – unique human-readable identifier used in URLs.
//  Poster        – encrypted poster URL + IV.
//  BigPoster     – encrypted large poster URL + IV.
//  NeedSubscribe – when true the video URL is entitlement-gated.
//  Price         – one-off purchase price (0 means not priced).
//  Rating        – denormalized mean of all ratings on the video.
//  CountOpened   – view counter used for most-popular ordering.
type Movie struct {
	ID            string  // movies.id
	VideoID       string  // movies.video_id
	Title         string  // movies.title
	Slug          string  // movies.slug
	Poster        []byte  // movies.poster
	PosterIV      []byte  // movies.poster_iv
	BigPoster     []byte  // movies.big_poster
	BigPosterIV   []byte  // movies.big_poster_iv
	NeedSubscribe bool    // movies.need_subscribe
	Price         float64 // movies.price
	Rating        float64 // movies.rating
	CountOpened   int     // movies.count_opened
}
