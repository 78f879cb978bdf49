package utils

import (
	"testing"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildSearchQueryNoFilter(t *testing.T) {
	query, values := BuildSearchQuery("trades", types.MySQLFilter{})
	assert.Equal(t, "SELECT * FROM trades", query)
	assert.Empty(t, values)
}

func TestBuildSearchQuerySingleClause(t *testing.T) {
	query, values := BuildSearchQuery("trades", types.MySQLFilter{
		Query: []types.MySQLQuery{
			{Column: "ammId", Op: "=", Query: "abc"},
		},
	})

	assert.Equal(t, "SELECT * FROM trades WHERE ammId = ?", query)
	assert.Equal(t, []any{"abc"}, values)
}

func TestBuildSearchQueryMultipleClausesWithPaging(t *testing.T) {
	query, values := BuildSearchQuery("trades", types.MySQLFilter{
		Query: []types.MySQLQuery{
			{Column: "action", Op: "=", Query: "BUY"},
			{Column: "timestamp", Op: ">", Query: "1700000000"},
		},
		Limit:  10,
		Offset: 20,
	})

	assert.Equal(t, "SELECT * FROM trades WHERE action = ? AND timestamp > ? LIMIT 10 OFFSET 20", query)
	assert.Equal(t, []any{"BUY", "1700000000"}, values)
}
