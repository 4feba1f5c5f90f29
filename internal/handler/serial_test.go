package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/model"
)

func TestApplySerialUpdateAbsentFieldsKeepStoredValues(t *testing.T) {
	s := model.Serial{ID: "serial-1", Title: "Dark", Slug: "dark", NeedSubscribe: true, Price: 19.99}

	title := "Dark (Remastered)"
	applySerialUpdate(&s, serialUpdateReq{Title: &title})

	require.Equal(t, title, s.Title)
	require.Equal(t, "dark", s.Slug)
	require.True(t, s.NeedSubscribe)
	require.Equal(t, 19.99, s.Price)
}

func TestApplySerialUpdateMergesSubmittedFields(t *testing.T) {
	s := model.Serial{ID: "serial-1", Title: "Dark", Slug: "dark", NeedSubscribe: true, Price: 19.99}

	slug := "Dark DE"
	free := false
	price := 0.0
	applySerialUpdate(&s, serialUpdateReq{Slug: &slug, NeedSubscribe: &free, Price: &price})

	require.Equal(t, "Dark", s.Title)
	require.Equal(t, "dark-de", s.Slug)
	require.False(t, s.NeedSubscribe)
	require.Zero(t, s.Price)
}
