package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

func doc(fields string) []byte { return []byte(fields) }

func TestMemory_FindWhere(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	defer m.Close()

	require.NoError(t, m.Set(ctx, Reservations, "a", doc(`{"date":"2024-06-03","floor":"6F","seatNo":3}`)))
	require.NoError(t, m.Set(ctx, Reservations, "b", doc(`{"date":"2024-06-03","floor":"7F","seatNo":3}`)))
	require.NoError(t, m.Set(ctx, Reservations, "c", doc(`{"date":"2024-06-04","floor":"6F","seatNo":"3"}`)))

	docs, err := m.Find(ctx, NewQuery(Reservations, Eq("date", "2024-06-03"), Eq("floor", "6F")))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "a", docs[0].ID)

	docs, err = m.Find(ctx, NewQuery(Reservations, Eq("seatNo", 3)))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	_, err = m.Get(ctx, Reservations, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemory_NewestFirstLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	defer m.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(ctx, Logs, fmt.Sprintf("log-%d", i), doc(`{"type":"bulk"}`)))
	}
	// overwriting keeps the original position
	require.NoError(t, m.Set(ctx, Logs, "log-0", doc(`{"type":"recurring"}`)))

	docs, err := m.Find(ctx, Query{Collection: Logs, NewestFirst: true, Limit: 3})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "log-4", docs[0].ID)
	require.Equal(t, "log-2", docs[2].ID)
}

func TestMemory_BatchLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	defer m.Close()

	b := m.Batch()
	for i := 0; i <= MaxBatchWrites; i++ {
		b.Set(Reservations, fmt.Sprint(i), doc(`{}`))
	}
	require.ErrorIs(t, b.Commit(ctx), errs.ErrBatchTooLarge)

	docs, err := m.Find(ctx, NewQuery(Reservations))
	require.NoError(t, err)
	require.Empty(t, docs)

	b = m.Batch()
	b.Set(Reservations, "x", doc(`{"a":1}`))
	b.Set(Reservations, "y", doc(`{"a":2}`))
	b.Delete(Reservations, "x")
	require.Equal(t, 3, b.Len())
	require.NoError(t, b.Commit(ctx))

	docs, err = m.Find(ctx, NewQuery(Reservations))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "y", docs[0].ID)
}

func TestMemory_Transaction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	defer m.Close()
	require.NoError(t, m.Set(ctx, Reservations, "a", doc(`{"seatNo":1}`)))

	t.Run("reads own writes", func(t *testing.T) {
		err := m.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.Delete(Reservations, "a"))
			require.NoError(t, tx.Set(Reservations, "b", doc(`{"seatNo":1}`)))
			docs, err := tx.Find(ctx, NewQuery(Reservations, Eq("seatNo", 1)))
			require.NoError(t, err)
			require.Len(t, docs, 1)
			require.Equal(t, "b", docs[0].ID)
			return nil
		})
		require.NoError(t, err)
		_, err = m.Get(ctx, Reservations, "a")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := m.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			require.NoError(t, tx.Set(Reservations, "c", doc(`{}`)))
			return boom
		})
		require.ErrorIs(t, err, boom)
		_, err = m.Get(ctx, Reservations, "c")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("serializable", func(t *testing.T) {
		var wg sync.WaitGroup
		created := make(chan string, 10)
		for i := 0; i < 10; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = m.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
					docs, err := tx.Find(ctx, NewQuery(Courses, Eq("slot", "x")))
					if err != nil || len(docs) > 0 {
						return err
					}
					id := fmt.Sprint(i)
					created <- id
					return tx.Set(Courses, id, doc(`{"slot":"x"}`))
				})
			}()
		}
		wg.Wait()
		close(created)
		require.Len(t, created, 1)
	})
}

func TestMemory_Subscribe(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())
	defer m.Close()

	snaps := make(chan []Document, 16)
	unsubscribe, err := m.Subscribe(ctx, NewQuery(Reservations, Eq("floor", "6F")), func(docs []Document) {
		snaps <- docs
	})
	require.NoError(t, err)

	first := <-snaps
	require.Empty(t, first)

	require.NoError(t, m.Set(ctx, Reservations, "a", doc(`{"floor":"6F"}`)))
	require.Eventually(t, func() bool {
		select {
		case s := <-snaps:
			return len(s) == 1
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	// drain anything delivered before unsubscribe returned
	for len(snaps) > 0 {
		<-snaps
	}
	require.NoError(t, m.Set(ctx, Reservations, "b", doc(`{"floor":"6F"}`)))
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, snaps)
}
