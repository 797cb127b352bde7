package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginateResult(t *testing.T) {
	r := NewPaginateResult([]int{1, 2}, 3, 2, 5)
	assert.Equal(t, int64(3), r.TotalPage)
	assert.Equal(t, int64(2), r.ItemCount)

	empty := NewPaginateResult[int](nil, 1, 20, 0)
	assert.Equal(t, int64(0), empty.TotalPage)
	assert.NotNil(t, empty.Items)
}
