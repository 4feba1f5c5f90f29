package telegram

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/apperr"
)

type recordingTransport struct {
	req    *http.Request
	body   string
	status int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.req = req
	b, _ := io.ReadAll(req.Body)
	rt.body = string(b)
	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
		Header:     http.Header{},
	}, nil
}

func testClient(rt *recordingTransport) *Client {
	c := New("test-token", "@channel")
	c.HTTP = &http.Client{Transport: rt}
	return c
}

func TestSendPhoto(t *testing.T) {
	rt := &recordingTransport{}
	c := testClient(rt)

	err := c.SendPhoto(context.Background(), "https://cdn/poster.jpg", "<b>Solaris</b>")
	require.NoError(t, err)

	require.NotNil(t, rt.req)
	assert.Contains(t, rt.req.URL.Path, "bottest-token/sendPhoto")
	assert.Contains(t, rt.body, "chat_id=%40channel")
	assert.Contains(t, rt.body, "photo=https%3A%2F%2Fcdn%2Fposter.jpg")
	assert.Contains(t, rt.body, "parse_mode=HTML")
}

func TestSendMessageErrorStatus(t *testing.T) {
	rt := &recordingTransport{status: http.StatusBadRequest}
	c := testClient(rt)

	err := c.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
}

func TestDisabledClientDropsSends(t *testing.T) {
	rt := &recordingTransport{}
	c := New("", "")
	c.HTTP = &http.Client{Transport: rt}

	require.NoError(t, c.SendPhoto(context.Background(), "https://cdn/p.jpg", "x"))
	require.NoError(t, c.SendMessage(context.Background(), "x"))
	assert.Nil(t, rt.req, "disabled client never talks to the API")
}
