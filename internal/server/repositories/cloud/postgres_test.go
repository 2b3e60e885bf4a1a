package cloud

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/geosync/internal/common"
	"github.com/dmitrijs2005/geosync/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ptr(s string) *string { return &s }

const ts1 = "2024-01-01T10:00:00.000Z"

func TestUpsert_StateWithParent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `INSERT INTO states \(uuid, name, country_id, last_updated, deleted_at\).*ON CONFLICT \(uuid\) DO UPDATE SET.*WHERE EXCLUDED\.last_updated >= states\.last_updated`
	mock.ExpectExec(q).
		WithArgs("s1", "North", "c1", ts1, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.Upsert(context.Background(), models.TableStates,
		models.Row{UUID: "s1", Name: "North", ParentID: ptr("c1"), LastUpdated: ts1})
	require.NoError(t, err)
	assert.True(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_CountrySuperseded(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `INSERT INTO countries \(uuid, name, last_updated, deleted_at\)`
	mock.ExpectExec(q).
		WithArgs("c1", "Testland", ts1, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.Upsert(context.Background(), models.TableCountries,
		models.Row{UUID: "c1", Name: "Testland", LastUpdated: ts1})
	require.NoError(t, err)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Upsert(context.Background(), models.Table("users; DROP"), models.Row{})
	require.ErrorIs(t, err, common.ErrUnknownTable)

	mock.ExpectExec(`INSERT INTO cities`).WillReturnError(errors.New("db is down"))
	_, err = repo.Upsert(context.Background(), models.TableCities, models.Row{UUID: "x"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db is down`), err.Error())

	mock.ExpectExec(`INSERT INTO cities`).WillReturnResult(sqlmock.NewErrorResult(errors.New("ra")))
	_, err = repo.Upsert(context.Background(), models.TableCities, models.Row{UUID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows affected error")
}

func TestDelete_LastWriterWins(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE cities SET deleted_at = \$1, last_updated = \$2\s+WHERE uuid = \$3 AND last_updated <= \$2`
	mock.ExpectExec(q).WithArgs(ts1, ts1, "x1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(ts1, ts1, "x2").WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.Delete(context.Background(), models.TableCities, "x1", ts1, ts1)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.Delete(context.Background(), models.TableCities, "x2", ts1, ts1)
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendQueue(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `INSERT INTO sync_queue \(origin_device_code, table_name, record_uuid, operation, json_payload, created_at\).*RETURNING id`
	mock.ExpectQuery(q).
		WithArgs(nil, "countries", "c1", "UPSERT", `{"operation":"UPSERT"}`, ts1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectQuery(q).
		WithArgs("dev-1", "countries", "c1", "DELETE", `{}`, ts1).
		WillReturnError(errors.New("boom"))

	e := &models.QueueEntry{TableName: models.TableCountries, RecordUUID: "c1", Operation: models.OpUpsert,
		JSONPayload: `{"operation":"UPSERT"}`, CreatedAt: ts1}
	id, err := repo.AppendQueue(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), e.ID)

	_, err = repo.AppendQueue(context.Background(), &models.QueueEntry{OriginDeviceCode: "dev-1",
		TableName: models.TableCountries, RecordUUID: "c1", Operation: models.OpDelete, JSONPayload: `{}`, CreatedAt: ts1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append queue entry")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueue(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "origin_device_code", "table_name", "record_uuid", "operation", "json_payload", "created_at"}
	mock.ExpectQuery(`SELECT id, COALESCE\(origin_device_code, ''\).*FROM sync_queue ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "", "countries", "c1", "UPSERT", `{}`, ts1).
			AddRow(int64(2), "dev-1", "states", "s1", "DELETE", `{}`, ts1))

	got, err := repo.ListQueue(context.Background())
	require.NoError(t, err)

	want := []models.QueueEntry{
		{ID: 1, TableName: models.TableCountries, RecordUUID: "c1", Operation: models.OpUpsert, JSONPayload: `{}`, CreatedAt: ts1},
		{ID: 2, OriginDeviceCode: "dev-1", TableName: models.TableStates, RecordUUID: "s1", Operation: models.OpDelete, JSONPayload: `{}`, CreatedAt: ts1},
	}
	assert.Empty(t, cmp.Diff(want, got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueue_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM sync_queue`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.ListQueue(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"uuid", "name", "country_id", "last_updated", "deleted_at"}
	mock.ExpectQuery(`SELECT uuid, name, country_id, last_updated, deleted_at FROM states ORDER BY uuid ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s1", "North", "c1", ts1, nil).
			AddRow("s2", "South", nil, ts1, ts1))
	mock.ExpectQuery(`SELECT uuid, name, NULL, last_updated, deleted_at FROM countries`).
		WillReturnError(errors.New("boom"))

	got, err := repo.Rows(context.Background(), models.TableStates)
	require.NoError(t, err)
	want := []models.Row{
		{UUID: "s1", Name: "North", ParentID: ptr("c1"), LastUpdated: ts1},
		{UUID: "s2", Name: "South", LastUpdated: ts1, DeletedAt: ptr(ts1)},
	}
	assert.Empty(t, cmp.Diff(want, got))

	_, err = repo.Rows(context.Background(), models.TableCountries)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`TRUNCATE TABLE sync_queue, cities, states, countries RESTART IDENTITY`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`TRUNCATE`).WillReturnError(errors.New("locked"))

	require.NoError(t, repo.Truncate(context.Background()))
	require.Error(t, repo.Truncate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
