package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/apperr"
)

func multipartCtx(t *testing.T, files map[string]string) echo.Context {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestPackageEntriesDecodesUploadedFile(t *testing.T) {
	c := multipartCtx(t, map[string]string{
		"movies.json": `[{"title":"Inception","slug":"inception","videoUrl":"u"},
		                {"title":"Tenet","slug":"tenet","videoUrl":"u2"}]`,
	})

	entries, err := packageEntries[movieCreateReq](c)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Inception", entries[0].Title)
	require.Equal(t, "tenet", entries[1].Slug)
}

func TestPackageEntriesCombinesFiles(t *testing.T) {
	c := multipartCtx(t, map[string]string{
		"a.json": `[{"title":"A","slug":"a","videoUrl":"u"}]`,
		"b.json": `[{"title":"B","slug":"b","videoUrl":"u"}]`,
	})

	entries, err := packageEntries[movieCreateReq](c)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestPackageEntriesRejectsNonArrayFile(t *testing.T) {
	c := multipartCtx(t, map[string]string{
		"movies.json": `{"title":"Inception"}`,
	})

	_, err := packageEntries[movieCreateReq](c)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPackageEntriesRejectsEmptyPackage(t *testing.T) {
	c := multipartCtx(t, map[string]string{"movies.json": `[]`})

	_, err := packageEntries[movieCreateReq](c)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPackageEntriesRequiresMultipartForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`[]`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	_, err := packageEntries[movieCreateReq](c)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
