package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
)

func TestPlanner_Bulk(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	f.seed(t, "2024-06-03", model.Floor6F, 2, 570, 630)

	plan, err := f.svc.planner.Plan(ctx, model.BatchRequest{
		Date:     datePtr("2024-06-03"),
		Floor:    model.Floor6F,
		Seats:    []int{1, 2, 3},
		StartMin: 540,
		EndMin:   600,
		Name:     "Sato",
	}, PlanOptions{})
	require.NoError(t, err)

	require.Equal(t, []int{1, 3}, seats(plan.Admitted))
	require.Len(t, plan.Rejected, 1)
	require.Equal(t, 2, plan.Rejected[0].SeatNo)
	require.Equal(t, ReasonConflict, plan.Rejected[0].Reason)
	require.Equal(t, model.LogTypeBulk, plan.Type)
	for _, r := range plan.Admitted {
		require.Equal(t, plan.BatchID, r.BatchID)
		require.Equal(t, model.ReservationID(plan.BatchID, r.Slot()), r.ID)
		require.Equal(t, model.PurposeSelfStudy, r.PurposeType)
	}
}

func TestPlanner_Recurring(t *testing.T) {
	f := newFixture(t, 500)
	ctx := context.Background()
	f.seed(t, "2024-06-10", model.Floor7F, 5, 600, 660)

	plan, err := f.svc.planner.Plan(ctx, model.BatchRequest{
		StartDate: datePtr("2024-06-03"),
		EndDate:   datePtr("2024-06-16"),
		Weekdays:  []time.Weekday{time.Wednesday, time.Monday},
		Floor:     model.Floor7F,
		Seats:     []int{5, 4},
		StartMin:  600,
		EndMin:    720,
		Name:      "Suzuki",
	}, PlanOptions{BatchID: "fixed"})
	require.NoError(t, err)

	require.Equal(t, "fixed", plan.BatchID)
	require.Equal(t, model.LogTypeRecurring, plan.Type)
	dates := make([]string, len(plan.Dates))
	for i, d := range plan.Dates {
		dates[i] = d.String()
	}
	require.Equal(t, []string{"2024-06-03", "2024-06-05", "2024-06-10", "2024-06-12"}, dates)

	got := make([]string, len(plan.Admitted))
	for i, r := range plan.Admitted {
		got[i] = r.Slot().String()
	}
	require.Equal(t, []string{
		"2024-06-03/7F/5", "2024-06-03/7F/4",
		"2024-06-05/7F/5", "2024-06-05/7F/4",
		"2024-06-10/7F/4",
		"2024-06-12/7F/5", "2024-06-12/7F/4",
	}, got)
	require.Len(t, plan.Rejected, 1)
	require.Equal(t, "2024-06-10", plan.Rejected[0].Date.String())
}

func TestPlanner_ValidationBeforeIO(t *testing.T) {
	f := newFixture(t, 500)
	f.store.findErr = errors.New("store must not be touched")
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.BatchRequest
		code string
	}{
		{
			name: "empty selection",
			req:  model.BatchRequest{Date: datePtr("2024-06-03"), Floor: model.Floor6F, StartMin: 540, EndMin: 600, Name: "a"},
			code: errs.CodeEmptySelection,
		},
		{
			name: "equal bounds",
			req:  model.BatchRequest{Date: datePtr("2024-06-03"), Floor: model.Floor6F, Seats: []int{1}, StartMin: 600, EndMin: 600, Name: "a"},
			code: errs.CodeInvalidRange,
		},
		{
			name: "no weekday in range",
			req: model.BatchRequest{
				StartDate: datePtr("2024-06-03"), EndDate: datePtr("2024-06-04"),
				Weekdays: []time.Weekday{time.Saturday},
				Floor:    model.Floor6F, Seats: []int{1}, StartMin: 540, EndMin: 600, Name: "a",
			},
			code: errs.CodeEmptySchedule,
		},
		{
			name: "seat off floor",
			req:  model.BatchRequest{Date: datePtr("2024-06-03"), Floor: model.Floor7F, Seats: []int{20}, StartMin: 540, EndMin: 600, Name: "a"},
			code: errs.CodeInvalidSeat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.planner.Plan(ctx, tt.req, PlanOptions{})
			require.ErrorIs(t, err, errs.ErrValidation)
			code, ok := errs.ValidationCode(err)
			require.True(t, ok)
			require.Equal(t, tt.code, code)
		})
	}
}

func TestPlanner_CheckFailureRejectsUnit(t *testing.T) {
	f := newFixture(t, 500)
	f.store.findErr = errs.ErrNotFound
	plan, err := f.svc.planner.Plan(context.Background(), model.BatchRequest{
		Date: datePtr("2024-06-03"), Floor: model.Floor6F, Seats: []int{1, 2}, StartMin: 540, EndMin: 600, Name: "a",
	}, PlanOptions{})
	require.NoError(t, err)
	require.Empty(t, plan.Admitted)
	require.Len(t, plan.Rejected, 2)
	require.Equal(t, ReasonCheckFailed, plan.Rejected[0].Reason)
}
