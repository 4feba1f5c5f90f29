// Package queue defines the message payloads exchanged over the broker
// together with the publisher and the background consumer.
package queue

// ContentPublishedEvent is published when a movie or episode is created
// with notification enabled. It carries enough for the announcement
// post without querying the primary database.
type ContentPublishedEvent struct {
	VideoID     string   `json:"video_id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	PosterURL   string   `json:"poster_url"`
	Year        int      `json:"year"`
	Genres      []string `json:"genres"`
	Countries   []string `json:"countries"`
	PublishedAt string   `json:"published_at"`
}
