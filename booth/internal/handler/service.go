package handler

import (
	"context"

	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BoothService interface {
	ListReservations(ctx context.Context, date model.Date, floor model.Floor) ([]model.Reservation, error)
	CreateSingle(ctx context.Context, req model.SingleRequest) (model.Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch model.ReservationPatch) (model.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string, date model.Date) (model.Reservation, error)

	CreateBatch(ctx context.Context, req model.BatchRequest) (service.BatchResult, error)
	DeleteBatch(ctx context.Context, batchID string) (int, error)

	ListLogs(ctx context.Context) ([]model.ReservationLog, error)
	GetLog(ctx context.Context, id string) (model.ReservationLog, error)
	EditLog(ctx context.Context, id string, req model.BatchRequest) (service.ReconcileResult, error)
	DeleteLog(ctx context.Context, id string) (int, error)

	ListCourses(ctx context.Context) ([]model.Course, error)
	AddCourse(ctx context.Context, name, color string) (model.Course, error)
	RenameCourse(ctx context.Context, id, name string) (model.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	MoveCourse(ctx context.Context, id string, direction int) ([]model.Course, error)

	Preview(ctx context.Context, date model.Date, floor model.Floor) (service.Preview, error)
	Today() model.Date
	NewFeed() *service.Feed
}

var _ BoothService = (*service.Service)(nil)
