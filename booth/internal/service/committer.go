package service

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

// ChunkFailure is a chunk that could not be confirmed written.
type ChunkFailure struct {
	Index int      `json:"index"`
	IDs   []string `json:"ids"`
	// Uncertain chunks timed out; their writes may have landed and a retry
	// of the same records converges on the same documents.
	Uncertain bool   `json:"uncertain"`
	Error     string `json:"error"`
}

type CommitResult struct {
	SuccessCount   int            `json:"successCount"`
	FailCount      int            `json:"failCount"`
	UncertainCount int            `json:"uncertainCount"`
	Failed         []ChunkFailure `json:"failed,omitempty"`
	// Conflicts found by the in-transaction re-check.
	Conflicts []Rejection `json:"conflicts,omitempty"`
}

func (r CommitResult) Summary() model.Summary {
	return model.Summary{
		SuccessCount:   r.SuccessCount,
		FailCount:      r.FailCount,
		UncertainCount: r.UncertainCount,
	}
}

func (r *CommitResult) add(o CommitResult) {
	r.SuccessCount += o.SuccessCount
	r.FailCount += o.FailCount
	r.UncertainCount += o.UncertainCount
	r.Failed = append(r.Failed, o.Failed...)
	r.Conflicts = append(r.Conflicts, o.Conflicts...)
}

// Committer writes planned reservations in chunks, one transaction per chunk.
// Each reservation is re-checked for conflicts inside its chunk's transaction,
// which closes the gap between planning and writing.
type Committer struct {
	repo      repository.Repository
	checker   *ConflictChecker
	policy    TimeoutPolicy
	chunkSize int
	log       *zap.Logger
}

func NewCommitter(repo repository.Repository, checker *ConflictChecker, policy TimeoutPolicy, chunkSize int, log *zap.Logger) *Committer {
	if chunkSize < 1 || chunkSize > docstore.MaxBatchWrites {
		chunkSize = docstore.MaxBatchWrites
	}
	return &Committer{
		repo:      repo,
		checker:   checker,
		policy:    policy,
		chunkSize: chunkSize,
		log:       log.Named("committer"),
	}
}

func chunks[T any](items []T, size int) [][]T {
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

// Commit never stops at a failed chunk; the result attributes every record
// to success, conflict or a failed chunk. The error is non-nil only when ctx
// ends before all chunks were attempted.
func (c *Committer) Commit(ctx context.Context, rs []model.Reservation) (CommitResult, error) {
	var total CommitResult
	for i, chunk := range chunks(rs, c.chunkSize) {
		if err := ctx.Err(); err != nil {
			rest := len(rs) - i*c.chunkSize
			total.FailCount += rest
			return total, err
		}
		total.add(c.commitChunk(ctx, i, chunk))
	}
	reservationsCommitted.Add(float64(total.SuccessCount))
	return total, nil
}

func (c *Committer) commitChunk(ctx context.Context, index int, chunk []model.Reservation) CommitResult {
	var conflicts []Rejection
	err := c.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return c.repo.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
			var err error
			conflicts, err = c.writeChecked(ctx, tx, chunk, nil)
			return err
		})
	})
	if err != nil {
		uncertain := Uncertain(err)
		chunkFailures.WithLabelValues(strconv.FormatBool(uncertain)).Inc()
		c.log.Error("commit chunk",
			zap.Int("chunk", index),
			zap.Int("size", len(chunk)),
			zap.Bool("uncertain", uncertain),
			zap.Error(err))
		res := CommitResult{
			FailCount: len(chunk),
			Failed: []ChunkFailure{{
				Index:     index,
				IDs:       ids(chunk),
				Uncertain: uncertain,
				Error:     err.Error(),
			}},
		}
		if uncertain {
			res.UncertainCount = len(chunk)
		}
		return res
	}
	for _, r := range conflicts {
		reservationsRejected.WithLabelValues(r.Reason).Inc()
	}
	return CommitResult{
		SuccessCount: len(chunk) - len(conflicts),
		FailCount:    len(conflicts),
		Conflicts:    conflicts,
	}
}

// writeChecked upserts each reservation unless it overlaps a record other
// than itself or one in exclude, or its seat holds an unreadable record.
// Those are returned, not written.
func (c *Committer) writeChecked(ctx context.Context, tx docstore.Tx, rs []model.Reservation, exclude []string) ([]Rejection, error) {
	var conflicts []Rejection
	for _, r := range rs {
		skip := append([]string{r.ID}, exclude...)
		found, err := c.checker.FindOverlapsTx(ctx, tx, r.Date, r.Floor, r.SeatNo, r.Range(), skip...)
		if errors.Is(err, errs.ErrUnreadable) {
			conflicts = append(conflicts, Rejection{
				Date:   r.Date,
				SeatNo: r.SeatNo,
				Reason: ReasonCheckFailed,
				Error:  err.Error(),
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			conflicts = append(conflicts, Rejection{
				Date:      r.Date,
				SeatNo:    r.SeatNo,
				Reason:    ReasonConflict,
				Conflicts: ids(found),
			})
			continue
		}
		if err := c.repo.PutReservation(tx, r); err != nil {
			return nil, err
		}
	}
	return conflicts, nil
}

func ids(rs []model.Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
