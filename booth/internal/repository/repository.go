package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/model"
)

type Repository interface {
	Store() docstore.Store

	ReservationsOn(ctx context.Context, rd docstore.Reader, date model.Date, floor model.Floor) ([]model.Reservation, error)
	SlotsOn(ctx context.Context, rd docstore.Reader, date model.Date, floor model.Floor) ([]Slot, error)
	ReservationsInBatch(ctx context.Context, rd docstore.Reader, batchID string) ([]model.Reservation, error)
	ReservationsByShape(ctx context.Context, rd docstore.Reader, shape model.ByShape) ([]model.Reservation, error)
	Reservation(ctx context.Context, rd docstore.Reader, id string) (model.Reservation, error)
	PutReservation(tx docstore.Tx, res model.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	DeleteReservations(ctx context.Context, ids []string) error

	Courses(ctx context.Context) ([]model.Course, error)
	Course(ctx context.Context, id string) (model.Course, error)
	CreateCourse(ctx context.Context, c model.Course) (model.Course, error)
	SaveCourse(ctx context.Context, c model.Course) error
	SaveCourses(ctx context.Context, cs []model.Course) error
	DeleteCourse(ctx context.Context, id string) error

	Logs(ctx context.Context, limit int) ([]model.ReservationLog, error)
	Log(ctx context.Context, rd docstore.Reader, id string) (model.ReservationLog, error)
	SaveLog(ctx context.Context, l model.ReservationLog) error
	PutLog(tx docstore.Tx, l model.ReservationLog) error
	DeleteLog(ctx context.Context, id string) error
}

type repository struct {
	store docstore.Store
	log   *zap.Logger
}

func NewRepository(store docstore.Store, log *zap.Logger) *repository {
	return &repository{
		store: store,
		log:   log.Named("repo"),
	}
}

func (r *repository) Store() docstore.Store {
	return r.store
}
