package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnouncementCaption(t *testing.T) {
	tests := []struct {
		name  string
		event ContentPublishedEvent
		want  string
	}{
		{
			name:  "title only",
			event: ContentPublishedEvent{Title: "Solaris"},
			want:  "<b>Solaris</b>",
		},
		{
			name:  "title with year",
			event: ContentPublishedEvent{Title: "Solaris", Year: 1972},
			want:  "<b>Solaris</b> (1972)",
		},
		{
			name: "full event",
			event: ContentPublishedEvent{
				Title:     "Solaris",
				Year:      1972,
				Genres:    []string{"Drama", "Sci-Fi"},
				Countries: []string{"USSR"},
			},
			want: "<b>Solaris</b> (1972)\nDrama, Sci-Fi\nUSSR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, announcementCaption(tt.event))
		})
	}
}
