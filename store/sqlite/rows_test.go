package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRows_ReportsIterationError(t *testing.T) {
	// GIVEN: A long result set whose context is cancelled mid-iteration
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE n(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM n WHERE i < 100000000)
		SELECT i FROM n`)
	require.NoError(t, err)
	require.True(t, rows.Next())
	cancel()

	// WHEN: Iteration stops early
	for rows.Next() {
	}

	// THEN: closeRows surfaces the error instead of a silent partial read
	assert.Error(t, closeRows(rows))
}

func TestCloseRows_CleanIteration(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rows, err := s.db.QueryContext(context.Background(), "SELECT 1 UNION ALL SELECT 2")
	require.NoError(t, err)
	n := 0
	for rows.Next() {
		n++
	}

	assert.NoError(t, closeRows(rows))
	assert.Equal(t, 2, n)
}
