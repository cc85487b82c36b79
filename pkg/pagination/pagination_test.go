package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	params := Params{}.Normalize("created_at")
	require.Equal(t, 1, params.Page)
	require.Equal(t, DefaultPageSize, params.PageSize)
	require.Equal(t, "created_at", params.SortKey)
	require.Equal(t, 0, params.Offset())
}

func TestNormalizeClampsPageSize(t *testing.T) {
	params := Params{Page: 3, PageSize: 5000}.Normalize("created_at")
	require.Equal(t, MaxPageSize, params.PageSize)
	require.Equal(t, 2*MaxPageSize, params.Offset())
}

func TestOrderClause(t *testing.T) {
	params := Params{SortKey: "total_amount", Ascending: true}.Normalize("created_at")
	require.Equal(t, "total_amount ASC", params.OrderClause())

	params.Ascending = false
	require.Equal(t, "total_amount DESC", params.OrderClause())
}

func TestNewPageCounts(t *testing.T) {
	params := Params{Page: 2, PageSize: 10}.Normalize("created_at")
	page := NewPage([]int{1, 2, 3}, 23, params)
	require.Equal(t, int64(23), page.TotalItems)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 2, page.Page)

	empty := NewPage[int](nil, 0, params)
	require.NotNil(t, empty.Items)
	require.Zero(t, empty.TotalPages)
}
