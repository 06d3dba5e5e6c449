package store_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
	"sjsage522/rentalscraper/services/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.Open(store.Config{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "ads.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newPostgresMock(t *testing.T) (*store.SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return store.New(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestTableName(t *testing.T) {
	table, err := store.TableName("Kyiv")
	require.NoError(t, err)
	assert.Equal(t, store.Table("ads_kyiv"), table)

	table, err = store.TableName("ivano-frankivsk")
	require.NoError(t, err)
	assert.Equal(t, store.Table("ads_ivano_frankivsk"), table)

	table, err = store.TableName("bila tserkva")
	require.NoError(t, err)
	assert.Equal(t, store.Table("ads_bila_tserkva"), table)

	_, err = store.TableName("  ")
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeValidation))

	_, err = store.TableName(`kyiv"; drop table x`)
	assert.Error(t, err)
}

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "kyiv")
	require.NoError(t, err)

	// creating the table again is a no-op
	_, err = s.CreateTable(ctx, "kyiv")
	require.NoError(t, err)

	ad := store.Ad{
		Title: "Оренда квартири",
		Price: "12 000 грн.",
		Area:  "45 м²",
		Link:  "https://www.olx.ua/d/uk/obyavlenie/kvartira-IDa1.html",
	}

	inserted, err := s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.True(t, inserted)

	ad.Title = "Changed title"
	inserted, err = s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.False(t, inserted)

	// link comparison ignores case
	ad.Link = "https://www.olx.ua/d/uk/obyavlenie/KVARTIRA-IDa1.html"
	inserted, err = s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.False(t, inserted)

	ads, err := s.ListAds(ctx, table)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Оренда квартири", ads[0].Title)
}

func TestInsertIfAbsentFoldsCyrillicCase(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "львів")
	require.NoError(t, err)

	ad := store.Ad{Title: "Кімната", Link: "https://www.olx.ua/d/uk/obyavlenie/Кімната-Центр-IDb7.html"}
	inserted, err := s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.True(t, inserted)

	ad.Link = "https://www.olx.ua/d/uk/obyavlenie/КІМНАТА-ЦЕНТР-IDb7.html"
	inserted, err = s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.False(t, inserted)

	// a different link is still stored
	ad.Link = "https://www.olx.ua/d/uk/obyavlenie/Кімната-Сихів-IDb8.html"
	inserted, err = s.InsertIfAbsent(ctx, table, ad)
	require.NoError(t, err)
	assert.True(t, inserted)

	ads, err := s.ListAds(ctx, table)
	require.NoError(t, err)
	assert.Len(t, ads, 2)
}

func TestExportCSV(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, "lviv")
	require.NoError(t, err)

	for _, ad := range []store.Ad{
		{Title: "Студія", Price: "9 000 грн.", Area: "25 м²", Link: "https://www.olx.ua/d/1.html"},
		{Title: "No Title Found", Price: "No Price Found", Area: "No Area Found", Link: "https://www.olx.ua/d/2.html"},
	} {
		_, err := s.InsertIfAbsent(ctx, table, ad)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	count, err := s.ExportCSV(ctx, table, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t,
		"id,title,price,area,link\n"+
			"1,Студія,9 000 грн.,25 м²,https://www.olx.ua/d/1.html\n"+
			"2,No Title Found,No Price Found,No Area Found,https://www.olx.ua/d/2.html\n",
		buf.String())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := store.Open(store.Config{Driver: "mysql"})
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeConfiguration))
}

func TestPostgresCreateTable(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "ads_kyiv"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS "ads_kyiv_link_key" ON "ads_kyiv" \(lower\(link\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	table, err := s.CreateTable(context.Background(), "Kyiv")
	require.NoError(t, err)
	assert.Equal(t, store.Table("ads_kyiv"), table)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertIfAbsent(t *testing.T) {
	s, mock := newPostgresMock(t)
	ad := store.Ad{Title: "t", Price: "p", Area: "a", Link: "https://www.olx.ua/d/1.html"}

	mock.ExpectExec(`INSERT INTO "ads_kyiv" \(title, price, area, link\) VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT DO NOTHING`).
		WithArgs("t", "p", "a", "https://www.olx.ua/d/1.html").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "ads_kyiv"`).
		WithArgs("t", "p", "a", "https://www.olx.ua/d/1.html").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := s.InsertIfAbsent(context.Background(), "ads_kyiv", ad)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertIfAbsent(context.Background(), "ads_kyiv", ad)
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`INSERT INTO "ads_kyiv"`).
		WillReturnError(errors.New("connection reset"))

	inserted, err := s.InsertIfAbsent(context.Background(), "ads_kyiv", store.Ad{Link: "x"})
	assert.False(t, inserted)
	assert.True(t, scrapeerrors.IsType(err, scrapeerrors.ErrorTypeStorage))
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
