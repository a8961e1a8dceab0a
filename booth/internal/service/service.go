package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/cache"
	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

// LogListLimit is how many logs ListLogs returns.
const LogListLimit = 50

type Options struct {
	Policy           TimeoutPolicy
	ChunkSize        int
	CheckConcurrency int
	Location         *time.Location
	CourseCache      cache.Courses
	Publisher        events.Publisher
}

type Service struct {
	repo       repository.Repository
	policy     TimeoutPolicy
	checker    *ConflictChecker
	planner    *Planner
	committer  *Committer
	recorder   *LogRecorder
	deleter    *BatchDeleter
	reconciler *Reconciler
	courses    *CourseCatalog
	loc        *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewService(repo repository.Repository, opts Options, log *zap.Logger) *Service {
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = DefaultTimeoutPolicy()
	}
	log = log.Named("service")
	checker := NewConflictChecker(repo)
	planner := NewPlanner(checker, opts.Policy, opts.CheckConcurrency, log)
	committer := NewCommitter(repo, checker, opts.Policy, opts.ChunkSize, log)
	recorder := NewLogRecorder(repo, opts.Policy, opts.Publisher, log)
	deleter := NewBatchDeleter(repo, opts.Policy, opts.Publisher, log)
	return &Service{
		repo:       repo,
		policy:     opts.Policy,
		checker:    checker,
		planner:    planner,
		committer:  committer,
		recorder:   recorder,
		deleter:    deleter,
		reconciler: NewReconciler(repo, planner, committer, deleter, recorder, opts.Policy, log),
		courses:    NewCourseCatalog(repo, opts.CourseCache, opts.Policy, log),
		loc:        opts.Location,
		now:        time.Now,
		log:        log,
	}
}

type BatchResult struct {
	BatchID  string        `json:"batchId"`
	LogID    string        `json:"logId,omitempty"`
	Type     model.LogType `json:"type"`
	Dates    []model.Date  `json:"dates"`
	Rejected []Rejection   `json:"rejected"`
	Commit   CommitResult  `json:"commit"`
	Summary  model.Summary `json:"summary"`
}

// CreateBatch plans, commits and logs a bulk or recurring request. The log
// is written even when nothing was admitted. A log write failure is
// returned together with the committed result, whose BatchID still
// addresses the saved reservations.
func (s *Service) CreateBatch(ctx context.Context, req model.BatchRequest) (BatchResult, error) {
	return s.createBatch(ctx, req, "")
}

func (s *Service) createBatch(ctx context.Context, req model.BatchRequest, typ model.LogType) (BatchResult, error) {
	plan, err := s.planner.Plan(ctx, req, PlanOptions{Type: typ})
	if err != nil {
		return BatchResult{}, err
	}
	commit, err := s.committer.Commit(ctx, plan.Admitted)
	res := BatchResult{
		BatchID:  plan.BatchID,
		Type:     plan.Type,
		Dates:    plan.Dates,
		Rejected: plan.Rejected,
		Commit:   commit,
		Summary:  summarize(plan, commit.SuccessCount, commit.FailCount, commit.UncertainCount),
	}
	if err != nil {
		return res, err
	}
	logID, err := s.recorder.Record(ctx, plan.BatchID, plan.Type, res.Summary, plan.Request)
	if err != nil {
		return res, err
	}
	res.LogID = logID
	s.log.Info("batch created",
		zap.String("batchId", plan.BatchID),
		zap.String("type", string(plan.Type)),
		zap.Int("success", res.Summary.SuccessCount),
		zap.Int("fail", res.Summary.FailCount))
	return res, nil
}

// CreateSingle books one seat on one day. It is logged like a batch so it can
// be undone from the log list. When the record was saved but the log was
// not, both the record and the error are returned.
func (s *Service) CreateSingle(ctx context.Context, req model.SingleRequest) (model.Reservation, error) {
	slot := model.SlotKey{Date: req.Date, Floor: req.Floor, SeatNo: req.SeatNo}
	res, err := s.createBatch(ctx, req.Batch(), model.LogTypeSingle)
	if err != nil {
		if res.Commit.SuccessCount > 0 {
			// saved but not logged; hand the record back with the error
			if saved, rerr := s.repo.Reservation(ctx, s.repo.Store(), model.ReservationID(res.BatchID, slot)); rerr == nil {
				return saved, err
			}
		}
		return model.Reservation{}, err
	}
	if len(res.Rejected) > 0 {
		return model.Reservation{}, rejectionError(res.Rejected[0])
	}
	if len(res.Commit.Conflicts) > 0 {
		return model.Reservation{}, rejectionError(res.Commit.Conflicts[0])
	}
	if len(res.Commit.Failed) > 0 {
		f := res.Commit.Failed[0]
		if f.Uncertain {
			return model.Reservation{}, errors.Wrap(errs.ErrTimeout, f.Error)
		}
		return model.Reservation{}, errors.Wrap(errs.ErrIO, f.Error)
	}
	return s.repo.Reservation(ctx, s.repo.Store(), model.ReservationID(res.BatchID, slot))
}

func rejectionError(r Rejection) error {
	if r.Reason == ReasonConflict {
		return errors.Wrapf(errs.ErrConflict, "seat %d on %s", r.SeatNo, r.Date)
	}
	return errors.Wrapf(errs.ErrIO, "seat %d on %s: %s", r.SeatNo, r.Date, r.Error)
}

// UpdateReservation edits one reservation in place. The seat may change;
// the target slot is conflict checked inside the same transaction.
func (s *Service) UpdateReservation(ctx context.Context, id string, patch model.ReservationPatch) (model.Reservation, error) {
	var updated model.Reservation
	err := s.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return s.repo.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
			cur, err := s.repo.Reservation(ctx, tx, id)
			if err != nil {
				return err
			}
			next := patch.Apply(cur, s.now())
			if err := next.Validate(); err != nil {
				return err
			}
			found, err := s.checker.FindOverlapsTx(ctx, tx, next.Date, next.Floor, next.SeatNo, next.Range(), id)
			if err != nil {
				return err
			}
			if len(found) > 0 {
				return errors.Wrapf(errs.ErrConflict, "seat %d on %s", next.SeatNo, next.Date)
			}
			updated = next
			return s.repo.PutReservation(tx, next)
		})
	})
	return updated, err
}

func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	return s.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return s.repo.DeleteReservation(ctx, id)
	})
}

// Duplicate copies a reservation onto another date, same seat and time.
func (s *Service) Duplicate(ctx context.Context, id string, date model.Date) (model.Reservation, error) {
	if date.IsZero() {
		return model.Reservation{}, errs.NewValidation(errs.CodeInvalidDate, "target date is required")
	}
	var created model.Reservation
	err := s.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
		return s.repo.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
			src, err := s.repo.Reservation(ctx, tx, id)
			if err != nil {
				return err
			}
			if src.Date.Equal(date) {
				return errs.NewValidation(errs.CodeSameDate, "reservation is already on %s", date)
			}
			found, err := s.checker.FindOverlapsTx(ctx, tx, date, src.Floor, src.SeatNo, src.Range())
			if err != nil {
				return err
			}
			if len(found) > 0 {
				return errors.Wrapf(errs.ErrConflict, "seat %d on %s", src.SeatNo, date)
			}
			now := s.now()
			dup := src
			dup.Date = date
			dup.BatchID = model.NewBatchID()
			dup.ID = model.ReservationID(dup.BatchID, dup.Slot())
			dup.CreatedAt = now
			dup.UpdatedAt = now
			created = dup
			return s.repo.PutReservation(tx, dup)
		})
	})
	return created, err
}

func (s *Service) ListReservations(ctx context.Context, date model.Date, floor model.Floor) ([]model.Reservation, error) {
	if !floor.Valid() {
		return nil, errs.NewValidation(errs.CodeInvalidFloor, "unknown floor %q", floor)
	}
	var rs []model.Reservation
	err := s.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		rs, err = s.repo.ReservationsOn(ctx, s.repo.Store(), date, floor)
		return err
	})
	if err != nil {
		return nil, err
	}
	SortReservations(rs)
	return rs, nil
}

func (s *Service) Preview(ctx context.Context, date model.Date, floor model.Floor) (Preview, error) {
	rs, err := s.ListReservations(ctx, date, floor)
	if err != nil {
		return Preview{}, err
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		s.log.Warn("preview without course colors", zap.Error(err))
	}
	return BuildPreview(date, floor, rs, courses), nil
}

// Today is the current calendar day in the facility's time zone.
func (s *Service) Today() model.Date {
	return model.Today(s.loc)
}

func (s *Service) DeleteBatch(ctx context.Context, batchID string) (int, error) {
	return s.deleter.DeleteBatch(ctx, batchID)
}

func (s *Service) ListLogs(ctx context.Context) ([]model.ReservationLog, error) {
	var logs []model.ReservationLog
	err := s.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		logs, err = s.repo.Logs(ctx, LogListLimit)
		return err
	})
	return logs, err
}

func (s *Service) GetLog(ctx context.Context, id string) (model.ReservationLog, error) {
	var l model.ReservationLog
	err := s.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		l, err = s.repo.Log(ctx, s.repo.Store(), id)
		return err
	})
	return l, err
}

func (s *Service) EditLog(ctx context.Context, id string, req model.BatchRequest) (ReconcileResult, error) {
	return s.reconciler.Reconcile(ctx, id, req)
}

// DeleteLog undoes a logged operation: its reservations go first, then the
// log. If the reservations cannot all be deleted the log is kept so the
// undo can be retried.
func (s *Service) DeleteLog(ctx context.Context, id string) (int, error) {
	entry, err := s.GetLog(ctx, id)
	if err != nil {
		return 0, err
	}
	deleted := 0
	if ref, ok := entry.Ref(); ok {
		deleted, err = s.deleter.DeleteByRef(ctx, ref)
		if err != nil {
			return deleted, err
		}
	} else {
		s.log.Warn("log without batch reference, deleting log only", zap.String("logId", id))
	}
	err = s.policy.Do(ctx, OpLog, func(ctx context.Context) error {
		return s.repo.DeleteLog(ctx, id)
	})
	return deleted, err
}

func (s *Service) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

func (s *Service) AddCourse(ctx context.Context, name, color string) (model.Course, error) {
	return s.courses.Add(ctx, name, color)
}

func (s *Service) RenameCourse(ctx context.Context, id, name string) (model.Course, error) {
	return s.courses.Rename(ctx, id, name)
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	return s.courses.Delete(ctx, id)
}

func (s *Service) MoveCourse(ctx context.Context, id string, direction int) ([]model.Course, error) {
	return s.courses.Move(ctx, id, direction)
}

// NewFeed opens a live view session.
func (s *Service) NewFeed() *Feed {
	return NewFeed(s.repo.Store(), s.log)
}
