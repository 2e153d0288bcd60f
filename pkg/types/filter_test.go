package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 0, NewPagination(0, 1, 10).TotalPages)
	assert.Equal(t, 1, NewPagination(10, 1, 10).TotalPages)
	assert.Equal(t, 2, NewPagination(11, 2, 10).TotalPages)
	assert.Equal(t, 0, NewPagination(11, 1, 0).TotalPages)
}
