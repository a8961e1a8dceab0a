package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
)

func decodeCourse(doc docstore.Document) (model.Course, error) {
	var c model.Course
	if err := doc.Decode(&c); err != nil {
		return model.Course{}, errors.Wrapf(err, "decode course %s", doc.ID)
	}
	c.ID = doc.ID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = doc.CreatedAt
	}
	return c, nil
}

func encodeCourse(c model.Course) ([]byte, error) {
	c.ID = ""
	return json.Marshal(c)
}

// Courses are returned in display order.
func (r *repository) Courses(ctx context.Context) ([]model.Course, error) {
	docs, err := r.store.Find(ctx, docstore.NewQuery(docstore.Courses))
	if err != nil {
		return nil, err
	}
	cs := make([]model.Course, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCourse(doc)
		if err != nil {
			r.log.Warn("skip malformed course", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		cs = append(cs, c)
	}
	model.SortCourses(cs)
	return cs, nil
}

func (r *repository) Course(ctx context.Context, id string) (model.Course, error) {
	doc, err := r.store.Get(ctx, docstore.Courses, id)
	if err != nil {
		return model.Course{}, err
	}
	return decodeCourse(doc)
}

func (r *repository) CreateCourse(ctx context.Context, c model.Course) (model.Course, error) {
	data, err := encodeCourse(c)
	if err != nil {
		return model.Course{}, err
	}
	id, err := r.store.Create(ctx, docstore.Courses, data)
	if err != nil {
		return model.Course{}, err
	}
	c.ID = id
	return c, nil
}

func (r *repository) SaveCourse(ctx context.Context, c model.Course) error {
	if c.ID == "" {
		return errors.Wrap(errs.ErrNotFound, "course without id")
	}
	data, err := encodeCourse(c)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, docstore.Courses, c.ID, data)
}

// SaveCourses rewrites all given courses in one atomic batch.
func (r *repository) SaveCourses(ctx context.Context, cs []model.Course) error {
	b := r.store.Batch()
	for _, c := range cs {
		data, err := encodeCourse(c)
		if err != nil {
			return err
		}
		b.Set(docstore.Courses, c.ID, data)
	}
	return b.Commit(ctx)
}

func (r *repository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, docstore.Courses, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, docstore.Courses, id)
}
