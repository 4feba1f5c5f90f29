package model

// VideoType discriminates the two playable variants. A video either owns a
// Movie record or belongs to a Season as a serial episode, never both.
type VideoType string

const (
	TypeMovie  VideoType = "MOVIE"
	TypeSerial VideoType = "SERIAL"
)

// Video is the playable unit shared by movies and serial episodes. VideoURL
// is stored encrypted with a per-record IV; callers go through the field
// cipher and the entitlement check before exposing it.
//
// Fields:
//  ID            – primary key (uuid string, videos.id).
//  VideoURL      – encrypted asset URL (videos.video_url).
//  VideoURLIV    – IV used when the URL was encrypted (videos.video_url_iv).
//  Year          – release year.
//  Duration      – runtime in minutes.
//  Type          – MOVIE or SERIAL.
//  Notified      – latch: true once the announcement was posted.
//  SeasonID      – owning season for episodes (NULL for movies).
//  EpisodeNumber – position within the season (0 for movies).
type Video struct {
	ID            string    // videos.id
	VideoURL      []byte    // videos.video_url
	VideoURLIV    []byte    // videos.video_url_iv
	Year          int       // videos.year
	Duration      int       // videos.duration
	Type          VideoType // videos.type
	Notified      bool      // videos.is_notified
	SeasonID      string    // videos.season_id (empty for movies)
	EpisodeNumber int       // videos.episode_number
}
