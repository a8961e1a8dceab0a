package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

var testPolicy = TimeoutPolicy{
	Read:           time.Second,
	Write:          time.Second,
	Log:            time.Second,
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
}

// faultyStore injects failures into transactions of the wrapped store.
type faultyStore struct {
	docstore.Store

	mu sync.Mutex
	// poison makes any transactional write of these ids fail
	poison map[string]bool
	// lostAcks transactions commit but report a timeout
	lostAcks int
	// findErr fails every Find outside transactions
	findErr error
	// refuse fails every write to these collections
	refuse  map[string]bool
	txCalls int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Store:  docstore.NewMemory(zap.NewNop()),
		poison: map[string]bool{},
		refuse: map[string]bool{},
	}
}

func (s *faultyStore) Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	s.mu.Lock()
	err := s.findErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.Find(ctx, q)
}

func (s *faultyStore) Set(ctx context.Context, collection, id string, data []byte) error {
	s.mu.Lock()
	bad := s.refuse[collection]
	s.mu.Unlock()
	if bad {
		return errors.New("write refused")
	}
	return s.Store.Set(ctx, collection, id, data)
}

func (s *faultyStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	s.mu.Lock()
	s.txCalls++
	s.mu.Unlock()
	err := s.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return fn(ctx, &faultyTx{Tx: tx, s: s})
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lostAcks > 0 {
		s.lostAcks--
		return context.DeadlineExceeded
	}
	return nil
}

type faultyTx struct {
	docstore.Tx
	s *faultyStore
}

func (t *faultyTx) Set(collection, id string, data []byte) error {
	t.s.mu.Lock()
	bad := t.s.poison[id] || t.s.refuse[collection]
	t.s.mu.Unlock()
	if bad {
		return errors.New("write refused")
	}
	return t.Tx.Set(collection, id, data)
}

type fixture struct {
	store *faultyStore
	repo  repository.Repository
	svc   *Service
}

func newFixture(t *testing.T, chunkSize int) *fixture {
	t.Helper()
	store := newFaultyStore()
	t.Cleanup(func() { _ = store.Close() })
	repo := repository.NewRepository(store, zap.NewNop())
	svc := NewService(repo, Options{
		Policy:           testPolicy,
		ChunkSize:        chunkSize,
		CheckConcurrency: 4,
		Location:         time.UTC,
	}, zap.NewNop())
	return &fixture{store: store, repo: repo, svc: svc}
}

func datePtr(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

// seed writes a reservation directly, bypassing planning.
func (f *fixture) seed(t *testing.T, date string, floor model.Floor, seat, start, end int) model.Reservation {
	t.Helper()
	req := model.BatchRequest{Floor: floor, StartMin: start, EndMin: end, Name: "seed", PurposeType: model.PurposeSelfStudy}
	r := req.Reservation(model.NewBatchID(), model.MustParseDate(date), seat, time.Now())
	err := f.store.Store.RunTransaction(context.Background(), func(ctx context.Context, tx docstore.Tx) error {
		return f.repo.PutReservation(tx, r)
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) all(t *testing.T) []model.Reservation {
	t.Helper()
	docs, err := f.store.Store.Find(context.Background(), docstore.NewQuery(docstore.Reservations))
	require.NoError(t, err)
	out := make([]model.Reservation, 0, len(docs))
	for _, d := range docs {
		r, err := repository.DecodeReservation(d)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func seats(rs []model.Reservation) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.SeatNo
	}
	return out
}

func TestTimeoutPolicy_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient", func(t *testing.T) {
		calls := 0
		err := testPolicy.Do(ctx, OpWrite, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("validation is permanent", func(t *testing.T) {
		calls := 0
		err := testPolicy.Do(ctx, OpWrite, func(ctx context.Context) error {
			calls++
			return errs.NewValidation(errs.CodeEmptyName, "x")
		})
		require.ErrorIs(t, err, errs.ErrValidation)
		require.Equal(t, 1, calls)
	})

	t.Run("timeout is uncertain", func(t *testing.T) {
		p := testPolicy
		p.Write = 10 * time.Millisecond
		err := p.Do(ctx, OpWrite, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		require.True(t, Uncertain(err))
	})

	t.Run("earlier timeout taints later failure", func(t *testing.T) {
		calls := 0
		err := testPolicy.Do(ctx, OpWrite, func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return context.DeadlineExceeded
			}
			return errors.New("unavailable")
		})
		require.True(t, Uncertain(err))
		require.Equal(t, 3, calls)
	})
}

func TestConflictChecker(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	existing := f.seed(t, "2024-06-03", model.Floor6F, 2, 600, 660)
	f.seed(t, "2024-06-03", model.Floor6F, 3, 600, 660)
	f.seed(t, "2024-06-03", model.Floor7F, 2, 600, 660)
	date := model.MustParseDate("2024-06-03")

	found, err := f.svc.checker.FindOverlaps(ctx, date, model.Floor6F, 2, model.NewTimeRange(630, 700))
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, existing.ID, found[0].ID)

	found, err = f.svc.checker.FindOverlaps(ctx, date, model.Floor6F, 2, model.NewTimeRange(660, 720))
	require.NoError(t, err)
	require.Empty(t, found, "touching intervals do not overlap")

	found, err = f.svc.checker.FindOverlaps(ctx, date, model.Floor6F, 2, model.NewTimeRange(540, 720), existing.ID)
	require.NoError(t, err)
	require.Empty(t, found)
}
