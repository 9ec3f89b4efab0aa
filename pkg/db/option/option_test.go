package option

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type row struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Phone     string
	Qty       int
	CreatedAt time.Time
}

func (row) TableName() string { return "rows" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&row{}))
	return db
}

func seedRows(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&row{
			ID:        int64(i),
			Name:      fmt.Sprintf("item-%03d", i),
			Phone:     fmt.Sprintf("555-%04d", i),
			Qty:       i,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		offset   int
		from, to int
	}{
		{0, 0, 29},
		{1, 30, 59},
		{4, 120, 149},
		{-1, 0, 29},
	}
	for _, tt := range tests {
		from, to := PageRange(tt.offset)
		require.Equal(t, tt.from, from)
		require.Equal(t, tt.to, to)
	}
}

func TestWithPage(t *testing.T) {
	db := openTestDB(t)
	seedRows(t, db, 65)

	var got []row
	stmt := Apply(db.Model(&row{}),
		WithOrder(&Order{Column: "qty", Direction: Asc}, map[string]bool{"qty": true}),
		WithPage(1),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Len(t, got, PageSize)
	require.Equal(t, 31, got[0].Qty)
	require.Equal(t, 60, got[len(got)-1].Qty)

	// Past the end: empty page, the caller's end-of-list signal.
	got = nil
	stmt = Apply(db.Model(&row{}), WithPage(5))
	require.NoError(t, stmt.Find(&got).Error)
	require.Empty(t, got)
}

func TestFiltersConjunctive(t *testing.T) {
	db := openTestDB(t)
	seedRows(t, db, 40)

	var got []row
	stmt := Apply(db.Model(&row{}),
		WithFilters([]Filter{
			{Column: "qty", Op: OpGt, Value: 10},
			{Column: "qty", Op: OpLte, Value: 12},
		}),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Len(t, got, 2)
}

func TestOrGroup(t *testing.T) {
	db := openTestDB(t)
	seedRows(t, db, 20)

	var got []row
	stmt := Apply(db.Model(&row{}),
		WithOrGroup([]Filter{
			{Column: "name", Op: OpILike, Value: "ITEM-003"},
			{Column: "phone", Op: OpILike, Value: "555-0007"},
		}),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Len(t, got, 2)
}

func TestOrderDefaultsToCreatedAtDesc(t *testing.T) {
	db := openTestDB(t)
	seedRows(t, db, 5)

	var got []row
	stmt := Apply(db.Model(&row{}),
		WithOrder(nil, map[string]bool{"name": true}),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Len(t, got, 5)
	require.Equal(t, int64(5), got[0].ID)

	// Unknown column falls back to the default as well.
	got = nil
	stmt = Apply(db.Model(&row{}),
		WithOrder(&Order{Column: "evil; DROP TABLE rows"}, map[string]bool{"name": true}),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Equal(t, int64(5), got[0].ID)
}

func TestInOperator(t *testing.T) {
	db := openTestDB(t)
	seedRows(t, db, 10)

	var got []row
	stmt := Apply(db.Model(&row{}),
		WithFilter(Filter{Column: "qty", Op: OpIn, Value: []int{2, 4, 6}}),
	)
	require.NoError(t, stmt.Find(&got).Error)
	require.Len(t, got, 3)
}
