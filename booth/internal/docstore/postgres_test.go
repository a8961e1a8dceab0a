package docstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	query, args, err := selectQuery(Query{
		Collection:  Reservations,
		Where:       []Predicate{Eq("date", "2024-06-03"), Eq("floor", "6F")},
		NewestFirst: true,
		Limit:       50,
	})
	require.NoError(t, err)
	require.Equal(t,
		"SELECT id, data, created_at FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY created_at DESC, id LIMIT 50",
		query)
	require.Equal(t, []any{Reservations, `{"date":"2024-06-03","floor":"6F"}`}, args)
}

func TestUpsertDeleteQuery(t *testing.T) {
	query, args, err := upsertQuery(Courses, "c1", []byte(`{"name":"math"}`))
	require.NoError(t, err)
	require.Equal(t,
		"INSERT INTO documents (collection,id,data) VALUES ($1,$2,$3) ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()",
		query)
	require.Equal(t, []any{Courses, "c1", `{"name":"math"}`}, args)

	query, args, err = deleteQuery(Courses, "c1")
	require.NoError(t, err)
	require.Equal(t, "DELETE FROM documents WHERE collection = $1 AND id = $2", query)
	require.Equal(t, []any{Courses, "c1"}, args)
}

func TestTouched(t *testing.T) {
	got := touched([]op{
		{collection: Reservations, id: "a"},
		{collection: Logs, id: "b"},
		{collection: Reservations, id: "c"},
	})
	require.Equal(t, []string{Reservations, Logs}, got)
}
