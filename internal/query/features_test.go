package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = map[string]string{
	"name":           "name",
	"price":          "price",
	"duration":       "duration",
	"ratingsAverage": "ratings_average",
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	f, err := Parse(url.Values{}, testColumns)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Empty(t, f.Filters)
	assert.Empty(t, f.Sorts)
	assert.Empty(t, f.Columns)
}

func TestParse_Filters(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("duration=5&price[gte]=100&price[lt]=2000")
	require.NoError(t, err)

	f, err := Parse(values, testColumns)
	require.NoError(t, err)
	require.Len(t, f.Filters, 3)

	byOp := map[string]Filter{}
	for _, filter := range f.Filters {
		byOp[filter.Column+filter.Operator] = filter
	}
	assert.Equal(t, "5", byOp["duration="].Value)
	assert.Equal(t, "100", byOp["price>="].Value)
	assert.Equal(t, "2000", byOp["price<"].Value)
}

func TestParse_UnknownFieldIgnored(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("bogus=1&bogus[gte]=2&price=50")
	require.NoError(t, err)

	f, err := Parse(values, testColumns)
	require.NoError(t, err)
	require.Len(t, f.Filters, 1)
	assert.Equal(t, "price", f.Filters[0].Column)
}

func TestParse_UnknownOperator(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("price[between]=100")
	require.NoError(t, err)

	_, err = Parse(values, testColumns)
	assert.ErrorIs(t, err, ErrBadQuery)
}

func TestParse_Sort(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("sort=price,-ratingsAverage,bogus")
	require.NoError(t, err)

	f, err := Parse(values, testColumns)
	require.NoError(t, err)
	require.Len(t, f.Sorts, 2)
	assert.Equal(t, Sort{Column: "price", Descending: false}, f.Sorts[0])
	assert.Equal(t, Sort{Column: "ratings_average", Descending: true}, f.Sorts[1])
}

func TestParse_FieldsProjection(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("fields=name,price,bogus")
	require.NoError(t, err)

	f, err := Parse(values, testColumns)
	require.NoError(t, err)
	// The id column is always included alongside a projection
	assert.Equal(t, []string{"name", "price", "id"}, f.Columns)
}

func TestParse_Pagination(t *testing.T) {
	t.Parallel()

	values, err := url.ParseQuery("page=3&limit=10")
	require.NoError(t, err)

	f, err := Parse(values, testColumns)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.Limit)
}

func TestParse_BadPagination(t *testing.T) {
	t.Parallel()

	tests := []string{
		"page=abc",
		"page=0",
		"page=-1",
		"limit=abc",
		"limit=0",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)

			_, err = Parse(values, testColumns)
			assert.ErrorIs(t, err, ErrBadQuery)
		})
	}
}

func TestSplitKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		wantName string
		wantOp   string
	}{
		{"price", "price", ""},
		{"price[gte]", "price", "gte"},
		{"price[", "price[", ""},
		{"[gte]", "", "gte"},
	}

	for _, tt := range tests {
		name, op := splitKey(tt.key)
		assert.Equal(t, tt.wantName, name, tt.key)
		assert.Equal(t, tt.wantOp, op, tt.key)
	}
}
