package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type article struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150"`
	Description string `gorm:"type:text"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&article{}))
	return db
}

func seed(t *testing.T, db *gorm.DB, rows ...article) {
	t.Helper()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{"defaults are valid", Params{Page: 1, Limit: 10, SortBy: "id", SortDir: "desc"}, nil},
		{"page zero", Params{Page: 0, Limit: 10, SortBy: "id", SortDir: "desc"}, ErrInvalidPage},
		{"negative page", Params{Page: -3, Limit: 10, SortBy: "id", SortDir: "desc"}, ErrInvalidPage},
		{"limit too small", Params{Page: 1, Limit: 0, SortBy: "id", SortDir: "desc"}, ErrInvalidLimit},
		{"limit too large", Params{Page: 1, Limit: 51, SortBy: "id", SortDir: "desc"}, ErrInvalidLimit},
		{"limit at max", Params{Page: 1, Limit: 50, SortBy: "id", SortDir: "desc"}, nil},
		{"unknown sort field", Params{Page: 1, Limit: 10, SortBy: "name; DROP TABLE", SortDir: "desc"}, ErrInvalidSortBy},
		{"bad sort direction", Params{Page: 1, Limit: 10, SortBy: "id", SortDir: "sideways"}, ErrInvalidSortDir},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	p := Params{}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, "id", p.SortBy)
	assert.Equal(t, "desc", p.SortDir)
}

func TestTokensDropsShortTokens(t *testing.T) {
	assert.Equal(t, []string{"car"}, Tokens("a car"))
	assert.Equal(t, []string{"red", "car"}, Tokens("  red   car "))
	assert.Empty(t, Tokens("a b c"))
	assert.Empty(t, Tokens("   "))
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 10))
	assert.Equal(t, 1, Pages(1, 10))
	assert.Equal(t, 1, Pages(10, 10))
	assert.Equal(t, 2, Pages(11, 10))
	assert.Equal(t, 3, Pages(25, 10))
}

func TestRunTokenizedMatch(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		article{Name: "Red Car", Description: "a fast red car"},
		article{Name: "Blue Car", Description: "slow"},
		article{Name: "Garden", Description: "red flowers"},
	)

	cols := []string{"name", "description"}

	t.Run("all tokens must match within one column", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{Query: "red car"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Red Car", res.Items[0].Name)
	})

	t.Run("short tokens are ignored", func(t *testing.T) {
		withNoise, err := Run[article](db, cols, Params{Query: "a car"})
		require.NoError(t, err)
		plain, err := Run[article](db, cols, Params{Query: "car"})
		require.NoError(t, err)
		assert.Equal(t, plain.Total, withNoise.Total)
	})

	t.Run("match is case insensitive", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{Query: "BLUE"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Blue Car", res.Items[0].Name)
	})

	t.Run("empty query returns everything", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, res.Total)
	})
}

func TestRunExactMatch(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		article{Name: "Red Car", Description: "something"},
		article{Name: "Red Carpet", Description: "Red Car enthusiasts meetup"},
	)

	cols := []string{"name", "description"}

	t.Run("whole field must match", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{Query: "Red Car", ExactMatch: true})
		require.NoError(t, err)
		require.EqualValues(t, 1, res.Total)
		assert.Equal(t, "Red Car", res.Items[0].Name)
	})

	t.Run("comparison ignores case", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{Query: "red car", ExactMatch: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Total)
	})

	t.Run("substring does not match", func(t *testing.T) {
		res, err := Run[article](db, cols, Params{Query: "Red", ExactMatch: true})
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.Total)
		assert.Equal(t, 0, res.Pages)
	})
}

func TestListAppliesLimitOffset(t *testing.T) {
	db := newTestDB(t)
	for i := 1; i <= 25; i++ {
		seed(t, db, article{Name: fmt.Sprintf("item %02d", i), Description: "filler"})
	}

	cols := []string{"name"}

	res, err := Run[article](db, cols, Params{Page: 3, Limit: 10, SortBy: "id", SortDir: "asc"})
	require.NoError(t, err)

	assert.EqualValues(t, 25, res.Total)
	assert.Equal(t, 3, res.Pages)
	require.Len(t, res.Items, 5)
	assert.Equal(t, "item 21", res.Items[0].Name)
	assert.Equal(t, "item 25", res.Items[4].Name)
}

func TestRunSortOrder(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		article{Name: "first"},
		article{Name: "second"},
		article{Name: "third"},
	)

	res, err := Run[article](db, []string{"name"}, Params{SortBy: "id", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "third", res.Items[0].Name)

	res, err = Run[article](db, []string{"name"}, Params{SortBy: "id", SortDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Items[0].Name)
}
