package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/report"
)

type staticProvider struct {
	db  *sql.DB
	err error
}

func (s staticProvider) DB(context.Context) (*sql.DB, error) { return s.db, s.err }
func (s staticProvider) Close() error                        { return nil }

func newShortageDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE shortage (
		rdate TEXT, line TEXT, serno INTEGER, wrksts TEXT, parent TEXT,
		itmno TEXT, itm_nm TEXT, required NUMERIC, used NUMERIC,
		onhand NUMERIC, standby NUMERIC, lotin NUMERIC)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO shortage VALUES
		('20261015', 'F01', 1, 'W', 'FG-1', 'A100', 'Widget', 50, 0, 30, 0, 30),
		('20261015', 'R01', 7, 'PENDING', 'FG-2', 'B200', NULL, 12.5, 0, 2.25, 0, 2.25),
		('20261015', 'X99', 2, 'W', 'FG-3', 'Z900', 'Ignored', 1, 0, 0, 0, 0)`)
	require.NoError(t, err)
	return db
}

func testReport(stmt sq.Sqlizer) report.Report {
	return report.Report{Name: "test", Statement: stmt}
}

func canonicalSelect() sq.SelectBuilder {
	return sq.Select(
		"rdate AS RDATE", "line AS LINE", "serno AS SERNO", "wrksts AS WRKSTS",
		"parent AS PARENT_ITMNO", "itmno AS ITMNO", "itm_nm AS ITM_NM",
		"required AS REQUIRED_QTY", "used AS USED_QTY", "onhand AS ONHAND_QTY",
		"standby AS STANDBY_QTY", "lotin AS LOTIN_QTY",
	).From("shortage")
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestFetchShortagesScansCanonicalColumns(t *testing.T) {
	t.Parallel()

	db := newShortageDB(t)
	repo := NewShortageRepository(staticProvider{db: db})

	stmt := canonicalSelect().
		Where(sq.Eq{"line": report.WatchedLines}).
		OrderBy("line", "serno")

	got, err := repo.FetchShortages(context.Background(), testReport(stmt))
	require.NoError(t, err)

	want := []domain.ShortageRow{
		{
			Date: "20261015", Line: "F01", Sequence: "1", WorkStatus: "W", ProductItem: "FG-1",
			Item: "A100", ItemName: "Widget",
			Required: decimal.NewFromInt(50), OnHand: decimal.NewFromInt(30), LotIn: decimal.NewFromInt(30),
		},
		{
			Date: "20261015", Line: "R01", Sequence: "7", WorkStatus: "PENDING", ProductItem: "FG-2",
			Item: "B200", ItemName: "",
			Required: decimal.RequireFromString("12.5"), OnHand: decimal.RequireFromString("2.25"), LotIn: decimal.RequireFromString("2.25"),
		},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "20", got[0].Shortage().String())
}

func TestFetchShortagesEmpty(t *testing.T) {
	t.Parallel()

	repo := NewShortageRepository(staticProvider{db: newShortageDB(t)})

	got, err := repo.FetchShortages(context.Background(), testReport(canonicalSelect().Where("1 = 0")))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchShortagesQueryErrors(t *testing.T) {
	t.Parallel()

	db := newShortageDB(t)
	repo := NewShortageRepository(staticProvider{db: db})

	cases := map[string]report.Report{
		"missing table": testReport(sq.Select("*").From("no_such_table")),
		"column count":  testReport(sq.Select("line", "itmno").From("shortage")),
		"no statement":  {Name: "test"},
	}
	for name, rep := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := repo.FetchShortages(context.Background(), rep)
			var qErr *domain.QueryError
			require.ErrorAs(t, err, &qErr)
			assert.Equal(t, "test", qErr.Report)
		})
	}
}

func TestFetchShortagesPassesConnectionError(t *testing.T) {
	t.Parallel()

	connErr := &domain.ConnectionError{Server: "db01", Err: errors.New("timeout")}
	repo := NewShortageRepository(staticProvider{err: connErr})

	_, err := repo.FetchShortages(context.Background(), report.LotIn())
	var got *domain.ConnectionError
	require.ErrorAs(t, err, &got)

	var qErr *domain.QueryError
	assert.False(t, errors.As(err, &qErr))
}
