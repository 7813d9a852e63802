package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBounds(t *testing.T) {
	limit, offset := Page{}.bounds()
	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = Page{Limit: 5000, Offset: -3}.bounds()
	assert.Equal(t, maxPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = Page{Limit: 10, Offset: 30}.bounds()
	assert.Equal(t, 10, limit)
	assert.Equal(t, 30, offset)
}

func TestClauseBuilder(t *testing.T) {
	b := newClauseBuilder()
	b.in("status", []string{"AVAILABLE", "ON_TRIP"})
	b.eq("vehicle_type", "VAN")
	b.search("  Van  ", "vehicle_id", "name")
	b.in("ignored", nil)
	b.search("   ", "name")

	assert.Equal(t,
		"1=1 AND status IN ($1,$2) AND vehicle_type=$3 AND (LOWER(vehicle_id) LIKE $4 OR LOWER(name) LIKE $4)",
		b.where())
	assert.Equal(t, []any{"AVAILABLE", "ON_TRIP", "VAN", "%van%"}, b.args)
}
