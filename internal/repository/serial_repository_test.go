package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/model"
)

func newSerialRepoMock(t *testing.T) (*SerialRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSerialRepo(db, NewVideoRepo(db)), mock
}

func serialRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "slug", "poster", "poster_iv", "big_poster", "big_poster_iv",
		"need_subscribe", "price", "rating", "count_opened",
	}).AddRow("serial-1", "Dark", "dark", []byte(nil), []byte(nil), []byte(nil), []byte(nil),
		true, 9.99, 0.0, 0)
}

// MySQL reports changed rows, so writing identical values affects zero
// rows on a row that exists. That must not surface as a miss.
func TestSerialUpdateUnchangedRowIsNotAMiss(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectExec("UPDATE serials SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM serials WHERE id").WillReturnRows(serialRow())

	err := repo.Update(context.Background(), model.Serial{ID: "serial-1", Title: "Dark", Slug: "dark"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSerialUpdateMissingRow(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectExec("UPDATE serials SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM serials WHERE id").WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), model.Serial{ID: "missing", Title: "X", Slug: "x"})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSerialUpdateChangedRowSkipsRecheck(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectExec("UPDATE serials SET").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), model.Serial{ID: "serial-1", Title: "Darker", Slug: "dark"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSeasonUnchangedRowIsNotAMiss(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectExec("UPDATE seasons SET number").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM seasons WHERE id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "serial_id", "number"}).AddRow("season-1", "serial-1", 2))

	err := repo.UpdateSeason(context.Background(), model.Season{ID: "season-1", SerialID: "serial-1", Number: 2})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSeasonMissingRow(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectExec("UPDATE seasons SET number").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM seasons WHERE id").WillReturnError(sql.ErrNoRows)

	err := repo.UpdateSeason(context.Background(), model.Season{ID: "missing", Number: 1})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEpisodeUnchangedRowIsNotAMiss(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE videos SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM videos WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectCommit()

	ep := model.Video{ID: "ep-1", Type: model.TypeSerial, EpisodeNumber: 1}
	err := repo.UpdateEpisode(context.Background(), ep, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEpisodeMissingRow(t *testing.T) {
	repo, mock := newSerialRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE videos SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM videos WHERE id").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ep := model.Video{ID: "missing", Type: model.TypeSerial, EpisodeNumber: 1}
	err := repo.UpdateEpisode(context.Background(), ep, nil, nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
