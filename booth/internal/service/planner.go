package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/booth-service/booth/internal/model"
)

// Rejection reasons.
const (
	ReasonConflict    = "conflict"
	ReasonCheckFailed = "check-failed"
)

// Rejection is one (date, seat) unit that will not be written.
type Rejection struct {
	Date      model.Date `json:"date"`
	SeatNo    int        `json:"seatNo"`
	Reason    string     `json:"reason"`
	Conflicts []string   `json:"conflicts,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type Plan struct {
	BatchID  string              `json:"batchId"`
	Type     model.LogType       `json:"type"`
	Request  model.BatchRequest  `json:"request"`
	Dates    []model.Date        `json:"dates"`
	Admitted []model.Reservation `json:"admitted"`
	Rejected []Rejection         `json:"rejected"`
}

type PlanOptions struct {
	// BatchID re-plans an existing batch; empty starts a new one.
	BatchID string
	// Exclude lists reservation ids ignored by the conflict checks.
	Exclude []string
	// Type overrides the log type derived from the request.
	Type model.LogType
}

type Planner struct {
	checker     *ConflictChecker
	policy      TimeoutPolicy
	concurrency int
	now         func() time.Time
	log         *zap.Logger
}

func NewPlanner(checker *ConflictChecker, policy TimeoutPolicy, concurrency int, log *zap.Logger) *Planner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Planner{
		checker:     checker,
		policy:      policy,
		concurrency: concurrency,
		now:         time.Now,
		log:         log.Named("planner"),
	}
}

type unit struct {
	date   model.Date
	seatNo int
}

type unitCheck struct {
	conflicts []model.Reservation
	err       error
}

// Plan validates req and checks every (date, seat) unit it covers. A unit
// whose check fails with an I/O error is rejected; the rest of the plan
// proceeds. Output keeps ascending date order, then request seat order.
func (p *Planner) Plan(ctx context.Context, req model.BatchRequest, opts PlanOptions) (Plan, error) {
	timer := prometheus.NewTimer(planDuration)
	defer timer.ObserveDuration()

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}
	batchID := opts.BatchID
	if batchID == "" {
		batchID = model.NewBatchID()
	}
	typ := opts.Type
	if typ == "" {
		typ = req.Type()
	}

	dates := req.Dates()
	units := make([]unit, 0, len(dates)*len(req.Seats))
	for _, d := range dates {
		for _, s := range req.Seats {
			units = append(units, unit{date: d, seatNo: s})
		}
	}

	checks := make([]unitCheck, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range units {
		i := i
		g.Go(func() error {
			u := units[i]
			err := p.policy.Do(gctx, OpRead, func(ctx context.Context) error {
				found, err := p.checker.FindOverlaps(ctx, u.date, req.Floor, u.seatNo, req.Range(), opts.Exclude...)
				if err != nil {
					return err
				}
				checks[i].conflicts = found
				return nil
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				checks[i].err = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	now := p.now()
	plan := Plan{
		BatchID:  batchID,
		Type:     typ,
		Request:  req,
		Dates:    dates,
		Admitted: make([]model.Reservation, 0, len(units)),
		Rejected: make([]Rejection, 0),
	}
	for i, u := range units {
		c := checks[i]
		switch {
		case c.err != nil:
			p.log.Warn("conflict check failed",
				zap.Stringer("date", u.date), zap.Int("seat", u.seatNo), zap.Error(c.err))
			plan.Rejected = append(plan.Rejected, Rejection{
				Date: u.date, SeatNo: u.seatNo, Reason: ReasonCheckFailed, Error: c.err.Error(),
			})
		case len(c.conflicts) > 0:
			ids := make([]string, len(c.conflicts))
			for j, r := range c.conflicts {
				ids[j] = r.ID
			}
			plan.Rejected = append(plan.Rejected, Rejection{
				Date: u.date, SeatNo: u.seatNo, Reason: ReasonConflict, Conflicts: ids,
			})
		default:
			plan.Admitted = append(plan.Admitted, req.Reservation(batchID, u.date, u.seatNo, now))
		}
	}
	for _, r := range plan.Rejected {
		reservationsRejected.WithLabelValues(r.Reason).Inc()
	}
	p.log.Debug("plan",
		zap.String("batchId", batchID),
		zap.Int("admitted", len(plan.Admitted)),
		zap.Int("rejected", len(plan.Rejected)))
	return plan, nil
}
