package pins

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

var pinCols = []string{"id", "title", "description", "lat", "lng", "category", "image_url", "created_at", "updated_at", "version", "visits_count"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgres_List_AllAndFiltered(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	mock.ExpectQuery(`SELECT id, title, .* FROM pins ORDER BY updated_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows(pinCols).
			AddRow(int64(2), "B", nil, 1.5, 2.5, "Test", "http://img", t0, t1, int64(3), int64(4)).
			AddRow(int64(1), "A", "desc", 0.0, 0.0, "Other", nil, t0, t0, int64(1), int64(0)))

	got, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "", got[0].Description)
	assert.Equal(t, "http://img", got[0].ImageURL)
	assert.True(t, got[0].UpdatedAt.Equal(t1))
	assert.Equal(t, int64(4), got[0].VisitsCount)
	assert.Equal(t, "desc", got[1].Description)

	mock.ExpectQuery(`FROM pins WHERE category = \$1 ORDER BY updated_at DESC, id DESC`).
		WithArgs("Nothing").
		WillReturnRows(sqlmock.NewRows(pinCols))

	got, err = repo.List(context.Background(), "Nothing")
	require.NoError(t, err)
	assert.NotNil(t, got, "empty result is an empty slice")
	assert.Empty(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pins`).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), "")
	if err == nil || !regexp.MustCompile(`failed to select pins: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	stored := now.Truncate(time.Microsecond)

	mock.ExpectQuery(`INSERT INTO pins .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$7, 1, 0\)\s+RETURNING id, title`).
		WithArgs("Hello", nil, 1.0, 2.0, "Test", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(pinCols).
			AddRow(int64(10), "Hello", nil, 1.0, 2.0, "Test", nil, stored, stored, int64(1), int64(0)))

	pin, err := repo.Create(context.Background(), &models.NewPin{Title: "Hello", Lat: 1, Lng: 2, Category: "Test"}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pin.ID)
	assert.Equal(t, int64(1), pin.Version)
	assert.Equal(t, int64(0), pin.VisitsCount)
	assert.True(t, pin.CreatedAt.Equal(pin.UpdatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM pins WHERE id = \$1`).WithArgs(int64(999999)).WillReturnRows(sqlmock.NewRows(pinCols))

	_, err := repo.Get(context.Background(), 999999)
	assert.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
}

func TestPostgres_CurrentUpdatedAt_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	mock.ExpectQuery(`SELECT updated_at FROM pins WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(ts))

	got, err := repo.CurrentUpdatedAt(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))
	assert.Equal(t, time.UTC, got.Location())

	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(6)).WillReturnError(sql.ErrNoRows)
	_, err = repo.CurrentUpdatedAt(context.Background(), 6)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestPostgres_Update_SuccessAndConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	prev := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	next := prev.Add(time.Second)
	q := `UPDATE pins\s+SET title = \$1, description = \$2, category = \$3, image_url = \$4,\s+updated_at = \$5, version = version \+ 1\s+WHERE id = \$6 AND updated_at = \$7`

	mock.ExpectQuery(q).
		WithArgs("New", "d", "Test", nil, sqlmock.AnyArg(), int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(pinCols).
			AddRow(int64(1), "New", "d", 1.0, 2.0, "Test", nil, prev, next, int64(2), int64(0)))

	upd := &models.PinUpdate{Title: "New", Description: "d", Category: "Test"}
	pin, err := repo.Update(context.Background(), 1, upd, prev, next)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pin.Version)

	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows(pinCols))
	_, err = repo.Update(context.Background(), 1, upd, prev, next)
	assert.True(t, errors.Is(err, common.ErrVersionConflict), "got %v", err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Touch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	prev := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	next := prev.Add(time.Microsecond)
	q := `UPDATE pins SET updated_at = \$1, version = version \+ 1 WHERE id = \$2 AND updated_at = \$3`

	mock.ExpectExec(q).WithArgs(sqlmock.AnyArg(), int64(1), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Touch(context.Background(), 1, prev, next))

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(repo.Touch(context.Background(), 1, prev, next), common.ErrVersionConflict))

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
	err := repo.Touch(context.Background(), 1, prev, next)
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 2))
	err = repo.Touch(context.Background(), 1, prev, next)
	if err == nil || !regexp.MustCompile(`unexpected rows affected: 2`).MatchString(err.Error()) {
		t.Fatalf("expected unexpected rows affected error, got %v", err)
	}
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM pins WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.Delete(context.Background(), 3), "missing pin is not an error")

	mock.ExpectExec(`DELETE FROM pins`).WillReturnError(errors.New("db is down"))
	err := repo.Delete(context.Background(), 3)
	if err == nil || !regexp.MustCompile(`failed to delete pin: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

func TestPostgres_Stats(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT p.category, COALESCE\(c.color, ''\), COUNT\(\*\), COALESCE\(SUM\(p.visits_count\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"category", "color", "pins", "visits"}).
			AddRow("Other", "", int64(1), int64(0)).
			AddRow("Test", "#ff0000", int64(2), int64(5)))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPins)
	assert.Equal(t, int64(5), stats.TotalVisits)
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "#ff0000", stats.ByCategory[1].Color)
}
