package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

type ReconcileResult struct {
	LogID    string        `json:"logId"`
	BatchID  string        `json:"batchId"`
	Deleted  int           `json:"deleted"`
	Atomic   bool          `json:"atomic"`
	Rejected []Rejection   `json:"rejected"`
	Commit   CommitResult  `json:"commit"`
	Summary  model.Summary `json:"summary"`
}

// Reconciler replaces the reservations of a logged batch with the set a new
// request produces, keeping the batch id.
type Reconciler struct {
	repo      repository.Repository
	planner   *Planner
	committer *Committer
	deleter   *BatchDeleter
	recorder  *LogRecorder
	policy    TimeoutPolicy
	now       func() time.Time
	log       *zap.Logger
}

func NewReconciler(repo repository.Repository, planner *Planner, committer *Committer, deleter *BatchDeleter, recorder *LogRecorder, policy TimeoutPolicy, log *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:      repo,
		planner:   planner,
		committer: committer,
		deleter:   deleter,
		recorder:  recorder,
		policy:    policy,
		now:       time.Now,
		log:       log.Named("reconciler"),
	}
}

// Reconcile deletes the originals that the new set does not rewrite and
// upserts the new set in one transaction when the writes fit one; otherwise
// it deletes in chunks and then commits. Running it twice with the same
// request deletes nothing the second time and rewrites the same documents.
func (r *Reconciler) Reconcile(ctx context.Context, logID string, req model.BatchRequest) (ReconcileResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return ReconcileResult{}, err
	}
	var entry model.ReservationLog
	if err := r.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		entry, err = r.repo.Log(ctx, r.repo.Store(), logID)
		return err
	}); err != nil {
		return ReconcileResult{}, err
	}
	ref, ok := entry.Ref()
	if !ok {
		return ReconcileResult{}, errors.Wrapf(errs.ErrNotFound, "log %s does not identify its reservations", logID)
	}

	batchID := entry.BatchID
	if batchID == "" {
		batchID = model.NewBatchID()
		r.log.Info("legacy log gets a batch id", zap.String("logId", logID), zap.String("batchId", batchID))
	}

	originals, err := r.deleter.resolve(ctx, ref)
	if err != nil {
		return ReconcileResult{}, err
	}
	origIDs := ids(originals)

	plan, err := r.planner.Plan(ctx, req, PlanOptions{
		BatchID: batchID,
		Exclude: origIDs,
		Type:    editedType(entry.Type, req),
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	created := make(map[string]time.Time, len(originals))
	for _, o := range originals {
		created[o.ID] = o.CreatedAt
	}
	keep := make(map[string]bool, len(plan.Admitted))
	for i, res := range plan.Admitted {
		keep[res.ID] = true
		// a rewritten member keeps its creation time
		if at, ok := created[res.ID]; ok && !at.IsZero() {
			plan.Admitted[i].CreatedAt = at
		}
	}
	stale := make([]string, 0, len(origIDs))
	for _, id := range origIDs {
		if !keep[id] {
			stale = append(stale, id)
		}
	}

	entry.BatchID = batchID
	entry.Type = plan.Type
	entry.Params = plan.Request

	result := ReconcileResult{LogID: entry.ID, BatchID: batchID, Rejected: plan.Rejected}
	if len(stale)+len(plan.Admitted)+1 <= docstore.MaxBatchWrites {
		return r.atomic(ctx, entry, plan, stale, origIDs, result)
	}
	return r.chunked(ctx, entry, plan, stale, result)
}

func (r *Reconciler) atomic(ctx context.Context, entry model.ReservationLog, plan Plan, stale, origIDs []string, result ReconcileResult) (ReconcileResult, error) {
	var conflicts []Rejection
	entry.UpdatedAt = r.now()
	err := r.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return r.repo.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
			for _, id := range stale {
				if err := tx.Delete(docstore.Reservations, id); err != nil {
					return err
				}
			}
			var err error
			conflicts, err = r.committer.writeChecked(ctx, tx, plan.Admitted, origIDs)
			if err != nil {
				return err
			}
			entry.Summary = summarize(plan, len(plan.Admitted)-len(conflicts), len(conflicts), 0)
			return r.repo.PutLog(tx, entry)
		})
	})
	if err != nil {
		return result, errors.Wrapf(err, "reconcile batch %s", result.BatchID)
	}
	reservationsDeleted.Add(float64(len(stale)))
	reservationsCommitted.Add(float64(len(plan.Admitted) - len(conflicts)))

	result.Atomic = true
	result.Deleted = len(stale)
	result.Commit = CommitResult{
		SuccessCount: len(plan.Admitted) - len(conflicts),
		FailCount:    len(conflicts),
		Conflicts:    conflicts,
	}
	result.Summary = entry.Summary
	r.recorder.publish(ctx, events.Event{
		Kind:    events.BatchEdited,
		BatchID: entry.BatchID,
		LogID:   entry.ID,
		Type:    entry.Type,
		Summary: entry.Summary,
		At:      entry.UpdatedAt,
	})
	return result, nil
}

func (r *Reconciler) chunked(ctx context.Context, entry model.ReservationLog, plan Plan, stale []string, result ReconcileResult) (ReconcileResult, error) {
	deleted, err := r.deleter.deleteIDs(ctx, stale)
	result.Deleted = deleted
	if err != nil {
		if deleted == 0 {
			return result, err
		}
		return result, errors.Wrapf(errs.ErrReconcileIncomplete, "batch %s: %v", result.BatchID, err)
	}

	commit, err := r.committer.Commit(ctx, plan.Admitted)
	result.Commit = commit
	entry.Summary = summarize(plan, commit.SuccessCount, commit.FailCount, commit.UncertainCount)
	result.Summary = entry.Summary
	lerr := r.recorder.Update(ctx, entry)
	if lerr != nil {
		r.log.Error("update log after edit", zap.String("logId", entry.ID), zap.Error(lerr))
	}
	if err != nil {
		return result, errors.Wrapf(errs.ErrReconcileIncomplete, "batch %s: %v", result.BatchID, err)
	}
	if len(commit.Failed) > 0 {
		return result, errors.Wrapf(errs.ErrReconcileIncomplete,
			"batch %s: %d of %d reservations not written", result.BatchID, commit.FailCount-len(commit.Conflicts), len(plan.Admitted))
	}
	if lerr != nil {
		// the log still describes the previous request
		return result, errors.Wrapf(errs.ErrReconcileIncomplete, "batch %s: %v", result.BatchID, lerr)
	}
	return result, nil
}

// summarize counts planning rejections as failures alongside commit failures.
func summarize(plan Plan, success, failed, uncertain int) model.Summary {
	return model.Summary{
		SuccessCount:   success,
		FailCount:      len(plan.Rejected) + failed,
		UncertainCount: uncertain,
	}
}

func editedType(was model.LogType, req model.BatchRequest) model.LogType {
	if was == model.LogTypeSingle && !req.IsRecurring() && len(req.Normalize().Seats) == 1 {
		return model.LogTypeSingle
	}
	return req.Type()
}
