package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineDateTime(t *testing.T) {
	clock := "08:30"
	got, err := CombineDateTime("2025-10-01", &clock)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 8, 30, 0, 0, time.UTC), got)

	got, err = CombineDateTime("2025-10-01", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), got)

	bad := "8h"
	_, err = CombineDateTime("2025-10-01", &bad)
	assert.Error(t, err)

	_, err = CombineDateTime("01/10/2025", nil)
	assert.Error(t, err)
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2025-01-31"
	got, err = ParseOptionalDate(&s)
	require.NoError(t, err)
	assert.Equal(t, 31, got.Day())
}

func TestPagination(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, uint64(10), limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)

	info := NewPaginationInfo(45, 9, 10)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 5, info.CurrentPage)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
