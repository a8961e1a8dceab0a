package docstore

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

const (
	documentsTable = "documents"
	notifyChannel  = "docstore_changes"
	maxTxAttempts  = 5
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ Store = (*Postgres)(nil)

// Postgres keeps every collection in one jsonb table. Change notifications
// travel through LISTEN/NOTIFY so subscriptions see writes from other
// processes too.
type Postgres struct {
	db     *pgxpool.Pool
	hub    *hub
	log    *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPostgres(db *pgxpool.Pool, log *zap.Logger) *Postgres {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Postgres{
		db:     db,
		log:    log.Named("pgstore"),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.hub = newHub(p.log)
	go p.listen(ctx)
	return p
}

func selectQuery(q Query) (string, []any, error) {
	b := qb.Select("id", "data", "created_at").
		From(documentsTable).
		Where(sq.Eq{"collection": q.Collection})
	if len(q.Where) > 0 {
		filter := make(map[string]any, len(q.Where))
		for _, p := range q.Where {
			filter[p.Field] = p.Value
		}
		raw, err := json.Marshal(filter)
		if err != nil {
			return "", nil, errors.Wrap(err, "encode filter")
		}
		b = b.Where(sq.Expr("data @> ?::jsonb", string(raw)))
	}
	if q.NewestFirst {
		b = b.OrderBy("created_at DESC", "id")
	} else {
		b = b.OrderBy("created_at", "id")
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b.ToSql()
}

func upsertQuery(collection, id string, data []byte) (string, []any, error) {
	return qb.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, string(data)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()").
		ToSql()
}

func deleteQuery(collection, id string) (string, []any, error) {
	return qb.Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func find(ctx context.Context, db querier, q Query) ([]Document, error) {
	query, args, err := selectQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", q.Collection)
	}
	defer rows.Close()
	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data, &d.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "scan %s", q.Collection)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func get(ctx context.Context, db querier, collection, id string) (Document, error) {
	query, args, err := qb.Select("id", "data", "created_at").
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return Document{}, err
	}
	var d Document
	if err := db.QueryRow(ctx, query, args...).Scan(&d.ID, &d.Data, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, errors.Wrapf(errs.ErrNotFound, "%s/%s", collection, id)
		}
		return Document{}, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return d, nil
}

func exec(ctx context.Context, db querier, o op) error {
	var (
		query string
		args  []any
		err   error
	)
	if o.data == nil {
		query, args, err = deleteQuery(o.collection, o.id)
	} else {
		if err := validJSONObject(o.data); err != nil {
			return err
		}
		query, args, err = upsertQuery(o.collection, o.id, o.data)
	}
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "write %s/%s", o.collection, o.id)
	}
	return nil
}

func notifyAll(ctx context.Context, db querier, collections []string) error {
	for _, c := range collections {
		if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, c); err != nil {
			return errors.Wrap(err, "notify")
		}
	}
	return nil
}

func (p *Postgres) Find(ctx context.Context, q Query) ([]Document, error) {
	return find(ctx, p.db, q)
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	return get(ctx, p.db, collection, id)
}

func (p *Postgres) Create(ctx context.Context, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	if err := p.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, data []byte) error {
	return p.write(ctx, []op{{collection: collection, id: id, data: data}})
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	return p.write(ctx, []op{{collection: collection, id: id}})
}

func (p *Postgres) write(ctx context.Context, ops []op) error {
	if err := checkBatchSize(len(ops)); err != nil {
		return err
	}
	for _, o := range ops {
		if o.data != nil {
			if err := validJSONObject(o.data); err != nil {
				return err
			}
		}
	}
	collections := touched(ops)
	err := pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, o := range ops {
			var (
				query string
				args  []any
				err   error
			)
			if o.data == nil {
				query, args, err = deleteQuery(o.collection, o.id)
			} else {
				query, args, err = upsertQuery(o.collection, o.id, o.data)
			}
			if err != nil {
				return err
			}
			b.Queue(query, args...)
		}
		for _, c := range collections {
			b.Queue("SELECT pg_notify($1, $2)", notifyChannel, c)
		}
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return errors.Wrap(err, "commit writes")
	}
	p.hub.notify(collections...)
	return nil
}

func (p *Postgres) Batch() Batch {
	return &pgBatch{p: p}
}

func (p *Postgres) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var (
		err         error
		collections []string
	)
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		collections = nil
		err = pgx.BeginTxFunc(ctx, p.db, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			t := &pgTx{ctx: ctx, tx: tx}
			if err := fn(ctx, t); err != nil {
				return err
			}
			if err := checkBatchSize(t.writes); err != nil {
				return err
			}
			collections = t.collections()
			return notifyAll(ctx, tx, collections)
		})
		if err == nil || !retryable(err) {
			break
		}
		p.log.Debug("transaction retry", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
		}
	}
	if err != nil {
		return err
	}
	p.hub.notify(collections...)
	return nil
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

func (p *Postgres) Subscribe(ctx context.Context, q Query, fn func([]Document)) (func(), error) {
	if q.Collection == "" {
		return nil, errors.New("subscribe: empty collection")
	}
	return p.hub.add(ctx, q, p.Find, fn), nil
}

func (p *Postgres) Close() error {
	p.cancel()
	<-p.done
	p.hub.closeAll()
	return nil
}

func (p *Postgres) listen(ctx context.Context) {
	defer close(p.done)
	for {
		err := p.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		p.log.Warn("listener stopped, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (p *Postgres) listenOnce(ctx context.Context) error {
	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		p.hub.notify(n.Payload)
	}
}

type pgBatch struct {
	p   *Postgres
	ops []op
}

func (b *pgBatch) Set(collection, id string, data []byte) {
	b.ops = append(b.ops, op{collection: collection, id: id, data: data})
}

func (b *pgBatch) Delete(collection, id string) {
	b.ops = append(b.ops, op{collection: collection, id: id})
}

func (b *pgBatch) Len() int { return len(b.ops) }

func (b *pgBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	return b.p.write(ctx, b.ops)
}

type pgTx struct {
	ctx     context.Context
	tx      pgx.Tx
	writes  int
	touched map[string]bool
}

func (t *pgTx) Find(ctx context.Context, q Query) ([]Document, error) {
	return find(ctx, t.tx, q)
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (Document, error) {
	return get(ctx, t.tx, collection, id)
}

func (t *pgTx) Set(collection, id string, data []byte) error {
	return t.record(op{collection: collection, id: id, data: data})
}

func (t *pgTx) Delete(collection, id string) error {
	return t.record(op{collection: collection, id: id})
}

func (t *pgTx) record(o op) error {
	t.writes++
	if err := checkBatchSize(t.writes); err != nil {
		return err
	}
	if t.touched == nil {
		t.touched = make(map[string]bool)
	}
	t.touched[o.collection] = true
	return exec(t.ctx, t.tx, o)
}

func (t *pgTx) collections() []string {
	out := make([]string, 0, len(t.touched))
	for c := range t.touched {
		out = append(out, c)
	}
	return out
}

func touched(ops []op) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, o := range ops {
		if !seen[o.collection] {
			seen[o.collection] = true
			out = append(out, o.collection)
		}
	}
	return out
}
